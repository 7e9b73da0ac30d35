package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Travel catalog.
	ListPackages(ctx context.Context) ([]*TravelPackage, error)

	// Escalation audit log.
	CreateEscalation(ctx context.Context, create *EscalationRecord) (*EscalationRecord, error)
	UpdateEscalationNotifyStatus(ctx context.Context, id string, status NotifyStatus) error

	// Knowledge base.
	CreateKnowledgeChunk(ctx context.Context, create *KnowledgeChunk) (*KnowledgeChunk, error)
	ListChunksWithoutEmbedding(ctx context.Context) ([]*KnowledgeChunk, error)
	UpsertKnowledgeEmbedding(ctx context.Context, upsert *KnowledgeEmbedding) error
	SearchKnowledgeChunks(ctx context.Context, vector []float32, topK int) ([]*ScoredChunk, error)
}
