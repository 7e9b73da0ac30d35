package sqlite

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/inaratravel/concierge/store"
)

func (d *DB) CreateKnowledgeChunk(ctx context.Context, create *store.KnowledgeChunk) (*store.KnowledgeChunk, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO knowledge_chunk (source, content, created_ts)
		VALUES (?, ?, ?)
	`, create.Source, create.Content, create.CreatedTs)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	create.ID = int32(id)
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
	buf, err := json.Marshal(upsert.Embedding)
	if err != nil {
		return errors.Wrap(err, "failed to encode embedding")
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO knowledge_embedding (chunk_id, embedding, model)
		VALUES (?, ?, ?)
		ON CONFLICT (chunk_id) DO UPDATE SET embedding = excluded.embedding, model = excluded.model
	`, upsert.ChunkID, string(buf), upsert.Model)
	return err
}

// SearchKnowledgeChunks scans all embeddings and ranks by cosine similarity
// in Go. Fine for the knowledge-base sizes SQLite deployments carry.
func (d *DB) SearchKnowledgeChunks(ctx context.Context, vector []float32, topK int) ([]*store.ScoredChunk, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT e.chunk_id, c.content, e.embedding
		FROM knowledge_embedding e
		JOIN knowledge_chunk c ON c.id = e.chunk_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := []*store.ScoredChunk{}
	for rows.Next() {
		var (
			sc      store.ScoredChunk
			encoded string
		)
		if err := rows.Scan(&sc.ChunkID, &sc.Content, &encoded); err != nil {
			return nil, err
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(encoded), &embedding); err != nil {
			return nil, errors.Wrapf(err, "failed to decode embedding for chunk %d", sc.ChunkID)
		}
		sc.Score = cosineSimilarity(vector, embedding)
		scored = append(scored, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
