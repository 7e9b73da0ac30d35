// Package store provides database access to the travel catalog, the
// knowledge base and the escalation audit log.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/inaratravel/concierge/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// ListPackages returns the active travel catalog, cheapest first.
func (s *Store) ListPackages(ctx context.Context) ([]*TravelPackage, error) {
	list, err := s.driver.ListPackages(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list travel packages")
	}
	return list, nil
}

// CreateEscalation persists one escalation audit record.
func (s *Store) CreateEscalation(ctx context.Context, create *EscalationRecord) (*EscalationRecord, error) {
	record, err := s.driver.CreateEscalation(ctx, create)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create escalation record")
	}
	return record, nil
}

// UpdateEscalationNotifyStatus records the outcome of the operator notification.
func (s *Store) UpdateEscalationNotifyStatus(ctx context.Context, id string, status NotifyStatus) error {
	if err := s.driver.UpdateEscalationNotifyStatus(ctx, id, status); err != nil {
		return errors.Wrapf(err, "failed to update notify status for escalation %s", id)
	}
	return nil
}

// CreateKnowledgeChunk stores one chunk of ingested document text.
func (s *Store) CreateKnowledgeChunk(ctx context.Context, create *KnowledgeChunk) (*KnowledgeChunk, error) {
	chunk, err := s.driver.CreateKnowledgeChunk(ctx, create)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create knowledge chunk")
	}
	return chunk, nil
}

// ListChunksWithoutEmbedding returns chunks the ingest runner still has to embed.
func (s *Store) ListChunksWithoutEmbedding(ctx context.Context) ([]*KnowledgeChunk, error) {
	list, err := s.driver.ListChunksWithoutEmbedding(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chunks without embedding")
	}
	return list, nil
}

// UpsertKnowledgeEmbedding stores or replaces a chunk's embedding vector.
func (s *Store) UpsertKnowledgeEmbedding(ctx context.Context, upsert *KnowledgeEmbedding) error {
	if err := s.driver.UpsertKnowledgeEmbedding(ctx, upsert); err != nil {
		return errors.Wrapf(err, "failed to upsert embedding for chunk %d", upsert.ChunkID)
	}
	return nil
}

// SearchChunks returns the content of the topK chunks nearest to the vector.
func (s *Store) SearchChunks(ctx context.Context, vector []float32, topK int) ([]string, error) {
	scored, err := s.driver.SearchKnowledgeChunks(ctx, vector, topK)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search knowledge chunks")
	}
	contents := make([]string, 0, len(scored))
	for _, sc := range scored {
		contents = append(contents, sc.Content)
	}
	return contents, nil
}
