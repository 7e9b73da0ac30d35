package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/inaratravel/concierge/store"
)

func (d *DB) CreateKnowledgeChunk(ctx context.Context, create *store.KnowledgeChunk) (*store.KnowledgeChunk, error) {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO knowledge_chunk (source, content, created_ts)
		VALUES ($1, $2, $3)
		RETURNING id
	`, create.Source, create.Content, create.CreatedTs).Scan(&create.ID)
	if err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListChunksWithoutEmbedding(ctx context.Context) ([]*store.KnowledgeChunk, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT c.id, c.source, c.content, c.created_ts
		FROM knowledge_chunk c
		LEFT JOIN knowledge_embedding e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.KnowledgeChunk{}
	for rows.Next() {
		c := &store.KnowledgeChunk{}
		if err := rows.Scan(&c.ID, &c.Source, &c.Content, &c.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (d *DB) UpsertKnowledgeEmbedding(ctx context.Context, upsert *store.KnowledgeEmbedding) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO knowledge_embedding (chunk_id, embedding, model)
		VALUES ($1, $2, $3)
		ON CONFLICT (chunk_id) DO UPDATE SET embedding = EXCLUDED.embedding, model = EXCLUDED.model
	`, upsert.ChunkID, pgvector.NewVector(upsert.Embedding), upsert.Model)
	return err
}

func (d *DB) SearchKnowledgeChunks(ctx context.Context, vector []float32, topK int) ([]*store.ScoredChunk, error) {
	// <=> is cosine distance; similarity = 1 - distance.
	rows, err := d.db.QueryContext(ctx, `
		SELECT c.id, c.content, 1 - (e.embedding <=> $1) AS score
		FROM knowledge_embedding e
		JOIN knowledge_chunk c ON c.id = e.chunk_id
		ORDER BY e.embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.ScoredChunk{}
	for rows.Next() {
		sc := &store.ScoredChunk{}
		if err := rows.Scan(&sc.ChunkID, &sc.Content, &sc.Score); err != nil {
			return nil, err
		}
		list = append(list, sc)
	}
	return list, rows.Err()
}
