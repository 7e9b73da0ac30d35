package store

// KnowledgeChunk is one ingested fragment of source document text.
type KnowledgeChunk struct {
	ID        int32
	Source    string
	Content   string
	CreatedTs int64
}

// KnowledgeEmbedding is the vector attached to a chunk.
type KnowledgeEmbedding struct {
	ChunkID   int32
	Embedding []float32
	Model     string
}

// ScoredChunk is a vector search hit.
type ScoredChunk struct {
	ChunkID int32
	Content string
	// Score is cosine similarity in [-1, 1]; higher is closer.
	Score float64
}
