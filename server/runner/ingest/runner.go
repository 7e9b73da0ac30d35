// Package ingest loads documents into the knowledge base and keeps chunk
// embeddings up to date.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/inaratravel/concierge/plugin/ai"
	"github.com/inaratravel/concierge/store"
)

const (
	defaultInterval    = 2 * time.Minute
	defaultConcurrency = 4

	// maxChunkLen bounds a chunk to what a retrieval hit can usefully inject
	// into the prompt.
	maxChunkLen = 800
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Runner ingests documents and embeds chunks that have no vector yet.
type Runner struct {
	store       *store.Store
	embedding   ai.EmbeddingService
	model       string
	interval    time.Duration
	concurrency int
}

// NewRunner creates an ingest runner.
func NewRunner(st *store.Store, embedding ai.EmbeddingService, model string) *Runner {
	return &Runner{
		store:       st,
		embedding:   embedding,
		model:       model,
		interval:    defaultInterval,
		concurrency: defaultConcurrency,
	}
}

// Run embeds pending chunks periodically until the context is canceled.
func (r *Runner) Run(ctx context.Context) {
	if err := r.EmbedMissing(ctx); err != nil {
		slog.Error("embedding pass failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ingest runner stopped")
			return
		case <-ticker.C:
			if err := r.EmbedMissing(ctx); err != nil {
				slog.Error("embedding pass failed", "error", err)
			}
		}
	}
}

// LoadFile splits a text document into paragraph chunks and stores them.
// Returns the number of chunks created.
func (r *Runner) LoadFile(ctx context.Context, path string) (int, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", path)
	}

	source := filepath.Base(path)
	now := time.Now().Unix()
	chunks := SplitParagraphs(string(buf))
	for _, content := range chunks {
		if _, err := r.store.CreateKnowledgeChunk(ctx, &store.KnowledgeChunk{
			Source:    source,
			Content:   content,
			CreatedTs: now,
		}); err != nil {
			return 0, err
		}
	}
	slog.Info("document ingested", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// EmbedMissing embeds every chunk without a vector, a few concurrently.
func (r *Runner) EmbedMissing(ctx context.Context) error {
	if r.embedding == nil {
		return errors.New("no embedding service configured")
	}
	chunks, err := r.store.ListChunksWithoutEmbedding(ctx)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			vector, err := r.embedding.Embed(gctx, chunk.Content)
			if err != nil {
				return errors.Wrapf(err, "failed to embed chunk %d", chunk.ID)
			}
			return r.store.UpsertKnowledgeEmbedding(gctx, &store.KnowledgeEmbedding{
				ChunkID:   chunk.ID,
				Embedding: vector,
				Model:     r.model,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("embedding pass finished", "chunks", len(chunks))
	return nil
}

// SplitParagraphs breaks a document on blank lines, merging short paragraphs
// forward so each chunk carries enough context to retrieve on.
func SplitParagraphs(text string) []string {
	paragraphs := paragraphBreak.Split(text, -1)

	chunks := []string{}
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > maxChunkLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
		if current.Len() >= maxChunkLen {
			flush()
		}
	}
	flush()
	return chunks
}
