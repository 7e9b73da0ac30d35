package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/store"
	"github.com/inaratravel/concierge/store/db"
)

func TestSplitParagraphs(t *testing.T) {
	text := "Paragraf pertama tentang visa.\n\nParagraf kedua tentang hotel.\n\n\n\nParagraf ketiga."

	chunks := SplitParagraphs(text)

	require.Len(t, chunks, 1, "short paragraphs merge into one chunk")
	assert.Contains(t, chunks[0], "visa")
	assert.Contains(t, chunks[0], "hotel")
	assert.Contains(t, chunks[0], "ketiga")
}

func TestSplitParagraphs_RespectsChunkBound(t *testing.T) {
	long := strings.Repeat("kalimat panjang tentang umrah. ", 40) // ~1200 chars
	text := long + "\n\n" + long

	chunks := SplitParagraphs(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitParagraphs_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitParagraphs(""))
	assert.Empty(t, SplitParagraphs("\n\n  \n\n"))
}

type fakeEmbedding struct {
	err   error
	calls int
}

func (f *fakeEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := f.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int { return 3 }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	prof := &profile.Profile{Mode: "dev", Driver: "sqlite", DSN: ":memory:"}
	driver, err := db.NewDBDriver(prof)
	require.NoError(t, err)
	st := store.New(driver, prof)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunner_LoadFileAndEmbed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "faq.txt")
	require.NoError(t, os.WriteFile(path, []byte("Syarat visa umrah adalah paspor aktif.\n\nHotel di Madinah berjarak 100m dari masjid."), 0o644))

	embedding := &fakeEmbedding{}
	runner := NewRunner(st, embedding, "test-model")

	n, err := runner.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, runner.EmbedMissing(ctx))
	assert.Equal(t, 1, embedding.calls)

	pending, err := st.ListChunksWithoutEmbedding(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second pass has nothing to do.
	require.NoError(t, runner.EmbedMissing(ctx))
	assert.Equal(t, 1, embedding.calls)
}

func TestRunner_RunEmbedsPendingAndStopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := st.CreateKnowledgeChunk(ctx, &store.KnowledgeChunk{Source: "faq", Content: "isi faq", CreatedTs: 1})
	require.NoError(t, err)

	runner := NewRunner(st, &fakeEmbedding{}, "test-model")
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		pending, listErr := st.ListChunksWithoutEmbedding(context.Background())
		return listErr == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond, "initial pass must embed the pending chunk")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on context cancellation")
	}
}

func TestRunner_EmbedMissingPropagatesFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateKnowledgeChunk(ctx, &store.KnowledgeChunk{Source: "x", Content: "isi", CreatedTs: 1})
	require.NoError(t, err)

	runner := NewRunner(st, &fakeEmbedding{err: errors.New("api down")}, "test-model")
	assert.Error(t, runner.EmbedMissing(ctx))
}
