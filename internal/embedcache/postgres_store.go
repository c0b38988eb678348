package embedcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

const (
	createTableSQL = `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS curated_embeddings (
			entry_id TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			embedding vector NOT NULL,
			source_text TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (entry_id, content_hash)
		);
		ALTER TABLE curated_embeddings ADD COLUMN IF NOT EXISTS model TEXT NOT NULL DEFAULT '';
	`

	upsertSQL = `
		INSERT INTO curated_embeddings (entry_id, content_hash, model, embedding, source_text, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entry_id, content_hash) DO UPDATE SET
			model = EXCLUDED.model,
			embedding = EXCLUDED.embedding,
			source_text = EXCLUDED.source_text,
			updated_at = EXCLUDED.updated_at
	`

	getSQL = `
		SELECT entry_id, content_hash, model, embedding, source_text, updated_at
		FROM curated_embeddings
		WHERE entry_id = $1 AND content_hash = $2
	`
)

// implements Store using PostgreSQL with a pgvector column
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL embedding store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the cache table if it doesn't exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create curated_embeddings: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, entryID, contentHash string) (*Record, error) {
	var (
		record Record
		vector pgvector.Vector
	)

	err := s.db.QueryRow(ctx, getSQL, entryID, contentHash).Scan(
		&record.EntryID, &record.ContentHash, &record.Model, &vector, &record.SourceText, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cached embedding: %w: %w", apperrors.ErrStore, err)
	}

	record.Vector = vector.Slice()

	return &record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record Record) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, upsertSQL,
		record.EntryID,
		record.ContentHash,
		record.Model,
		pgvector.NewVector(record.Vector),
		record.SourceText,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}
