package ai

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	name   string
	reply  string
	err    error
	kinds  []CallKind
	called int
}

func (f *fakeCompleter) Name() string { return f.name }

func (f *fakeCompleter) Complete(_ context.Context, kind CallKind, _ []Message) (string, error) {
	f.called++
	f.kinds = append(f.kinds, kind)
	return f.reply, f.err
}

func TestFallbackGateway_FirstProviderWins(t *testing.T) {
	first := &fakeCompleter{name: "first", reply: "jawaban pertama"}
	second := &fakeCompleter{name: "second", reply: "jawaban kedua"}
	g := NewFallbackGateway([]Completer{first, second})

	out := g.Complete(context.Background(), "sistem", "pertanyaan", nil)

	assert.Equal(t, "jawaban pertama", out)
	assert.Equal(t, 1, first.called)
	assert.Zero(t, second.called, "second provider should not be consulted")
}

func TestFallbackGateway_FallsThroughOnError(t *testing.T) {
	tests := []struct {
		name  string
		first *fakeCompleter
	}{
		{name: "provider error", first: &fakeCompleter{name: "broken", err: errors.New("boom")}},
		{name: "empty response", first: &fakeCompleter{name: "empty", reply: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := &fakeCompleter{name: "second", reply: "cadangan"}
			var failures []string
			g := NewFallbackGateway(
				[]Completer{tt.first, second},
				WithFailureHook(func(p string) { failures = append(failures, p) }),
			)

			out := g.Complete(context.Background(), "sistem", "pertanyaan", nil)

			assert.Equal(t, "cadangan", out)
			assert.Equal(t, []string{tt.first.name}, failures)
		})
	}
}

func TestFallbackGateway_ExhaustedYieldsApology(t *testing.T) {
	exhausted := false
	g := NewFallbackGateway(
		[]Completer{&fakeCompleter{name: "only", err: errors.New("down")}},
		WithExhaustedHook(func() { exhausted = true }),
	)

	out := g.Complete(context.Background(), "sistem", "pertanyaan", nil)

	assert.Equal(t, ApologyReply, out)
	assert.True(t, exhausted)
}

func TestFallbackGateway_NoProvidersYieldsApology(t *testing.T) {
	g := NewFallbackGateway(nil)
	assert.Equal(t, ApologyReply, g.Complete(context.Background(), "s", "p", nil))
}

func TestFallbackGateway_ClassifyUsesFallbackLabel(t *testing.T) {
	g := NewFallbackGateway([]Completer{&fakeCompleter{name: "dead", err: errors.New("down")}})

	label := g.ClassifyLabel(context.Background(), "prompt", "iya deh", "OTHER")

	assert.Equal(t, "OTHER", label)
}

func TestFallbackGateway_ClassifyRunsClassifyKind(t *testing.T) {
	p := &fakeCompleter{name: "p", reply: "AFFIRM"}
	g := NewFallbackGateway([]Completer{p})

	label := g.ClassifyLabel(context.Background(), "prompt", "iya", "OTHER")

	assert.Equal(t, "AFFIRM", label)
	require.Len(t, p.kinds, 1)
	assert.Equal(t, CallClassify, p.kinds[0])
}

func TestBuildMessages(t *testing.T) {
	history := []Message{UserMessage("halo"), AssistantMessage("halo juga")}

	msgs := BuildMessages("sistem", "pertanyaan", history)

	require.Len(t, msgs, 4)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "halo", msgs[1].Content)
	assert.Equal(t, RoleUser, msgs[3].Role)
	assert.Equal(t, "pertanyaan", msgs[3].Content)
}
