package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
)

// Document is one retrievable unit of schema knowledge (a model, a
// column, a description chunk) indexed for a project.
type Document struct {
	ID        uuid.UUID
	ProjectID string
	Content   string
	Meta      map[string]string
}

// ScoredDocument is a retrieval hit with its cosine similarity score.
type ScoredDocument struct {
	Document
	Score float64
}

// VectorStore is the Postgres/pgvector document store backing the
// retrieval stage and the indexing pipeline.
type VectorStore struct {
	db *pgxpool.Pool
}

func NewVectorStore(ctx context.Context, dsn string) (*VectorStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("vector store DSN cannot be empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector store DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping vector store: %w", err)
	}
	log.Info("Connected to PostgreSQL vector store.")
	return &VectorStore{db: pool}, nil
}

func (s *VectorStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// Upsert writes documents with their embeddings. docs and embeddings are
// parallel slices.
func (s *VectorStore) Upsert(ctx context.Context, docs []Document, embeddings []pgvector.Vector) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("got %d documents but %d embeddings", len(docs), len(embeddings))
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO documents (id, project_id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`
	for i, doc := range docs {
		meta, err := json.Marshal(doc.Meta)
		if err != nil {
			return fmt.Errorf("marshal metadata for document %s: %w", doc.ID, err)
		}
		if _, err := tx.Exec(ctx, q, doc.ID, doc.ProjectID, doc.Content, meta, embeddings[i]); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// Search returns the limit nearest documents for the project by cosine
// distance.
func (s *VectorStore) Search(ctx context.Context, projectID string, embedding pgvector.Vector, limit int) ([]ScoredDocument, error) {
	const q = `
		SELECT id, project_id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM documents
		WHERE project_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3`
	rows, err := s.db.Query(ctx, q, embedding, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []ScoredDocument
	for rows.Next() {
		var (
			d    ScoredDocument
			meta []byte
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Content, &meta, &d.Score); err != nil {
			return nil, fmt.Errorf("scan vector search row: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &d.Meta); err != nil {
				log.Warnf("Skipping malformed metadata for document %s: %v", d.ID, err)
			}
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// DeleteProject removes every document indexed for the project. Used by
// re-indexing to replace a project's corpus wholesale.
func (s *VectorStore) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM documents WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete project documents: %w", err)
	}
	return nil
}
