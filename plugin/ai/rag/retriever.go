package rag

import (
	"context"
	"log/slog"
)

// Source values reported back to API clients.
const (
	SourceCatalog       = "catalog"
	SourceKnowledgeBase = "knowledge_base"
	SourceGeneral       = "general"
	SourceCustomRequest = "custom_request"
)

// Embedder turns a query into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher finds the stored chunks nearest to a query vector.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, vector []float32, topK int) ([]string, error)
}

// SnapshotSource returns the rendered catalog text.
type SnapshotSource interface {
	Current(ctx context.Context) (string, error)
}

// Context is the knowledge attached to one chat turn.
type Context struct {
	Class  QueryClass
	Chunks []string
	Source string
}

// Retriever routes a message to the right knowledge source. Retrieval
// failures degrade to an empty context; they never fail the turn.
type Retriever struct {
	embedder Embedder
	searcher ChunkSearcher
	catalog  SnapshotSource
	topK     int
}

// NewRetriever wires the retrieval pipeline. topK bounds vector results.
func NewRetriever(embedder Embedder, searcher ChunkSearcher, catalog SnapshotSource, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{embedder: embedder, searcher: searcher, catalog: catalog, topK: topK}
}

// Retrieve classifies the message and gathers its knowledge context.
// Commercial questions read the catalog exclusively, so prices never leak in
// from stale indexed documents. Custom requests skip retrieval entirely.
func (r *Retriever) Retrieve(ctx context.Context, message string) Context {
	class := Classify(message)

	switch class {
	case QueryCustom:
		return Context{Class: class, Source: SourceCustomRequest}

	case QueryCommercial:
		text, err := r.catalog.Current(ctx)
		if err != nil {
			slog.Warn("catalog snapshot unavailable, answering without context", "error", err)
			return Context{Class: class, Source: SourceGeneral}
		}
		if text == "" {
			return Context{Class: class, Source: SourceGeneral}
		}
		return Context{Class: class, Chunks: []string{text}, Source: SourceCatalog}

	default:
		chunks := r.searchKnowledge(ctx, message)
		if len(chunks) == 0 {
			return Context{Class: class, Source: SourceGeneral}
		}
		return Context{Class: class, Chunks: chunks, Source: SourceKnowledgeBase}
	}
}

func (r *Retriever) searchKnowledge(ctx context.Context, message string) []string {
	if r.embedder == nil || r.searcher == nil {
		return nil
	}
	vector, err := r.embedder.Embed(ctx, message)
	if err != nil {
		slog.Warn("query embedding failed, answering without context", "error", err)
		return nil
	}
	chunks, err := r.searcher.SearchChunks(ctx, vector, r.topK)
	if err != nil {
		slog.Warn("vector search failed, answering without context", "error", err)
		return nil
	}
	return chunks
}
