package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortTermHistory_Roundtrip(t *testing.T) {
	h := NewShortTermHistory(8, time.Hour)
	defer h.Close()
	ctx := context.Background()

	require.NoError(t, h.AppendExchange(ctx, "u", "halo", "halo juga, Kak"))
	require.NoError(t, h.AppendExchange(ctx, "u", "ada paket apa?", "ada Paket Hemat"))

	turns, err := h.Recent(ctx, "u")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "halo", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[3].Role)
	assert.Equal(t, "ada Paket Hemat", turns[3].Content)
}

func TestShortTermHistory_WindowBound(t *testing.T) {
	h := NewShortTermHistory(8, time.Hour)
	defer h.Close()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, h.AppendExchange(ctx, "u", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	turns, err := h.Recent(ctx, "u")
	require.NoError(t, err)
	require.Len(t, turns, 8, "only the newest four exchanges survive")
	assert.Equal(t, "q6", turns[0].Content, "oldest surviving turn")
	assert.Equal(t, "a9", turns[7].Content, "newest turn")
}

func TestShortTermHistory_TTLExpiry(t *testing.T) {
	h := NewShortTermHistory(8, 20*time.Millisecond)
	defer h.Close()
	ctx := context.Background()

	require.NoError(t, h.AppendExchange(ctx, "u", "halo", "hai"))
	time.Sleep(40 * time.Millisecond)

	turns, err := h.Recent(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestShortTermHistory_UsersIsolated(t *testing.T) {
	h := NewShortTermHistory(8, time.Hour)
	defer h.Close()
	ctx := context.Background()

	require.NoError(t, h.AppendExchange(ctx, "a", "qa", "ra"))
	require.NoError(t, h.AppendExchange(ctx, "b", "qb", "rb"))

	turns, err := h.Recent(ctx, "a")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "qa", turns[0].Content)
}

func TestShortTermHistory_ReturnsCopy(t *testing.T) {
	h := NewShortTermHistory(8, time.Hour)
	defer h.Close()
	ctx := context.Background()

	require.NoError(t, h.AppendExchange(ctx, "u", "q", "r"))
	turns, err := h.Recent(ctx, "u")
	require.NoError(t, err)
	turns[0].Content = "mutated"

	again, err := h.Recent(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "q", again[0].Content)
}
