package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/logger"
)

// writes all records in a single transaction, replacing rows with the same id
func (c *PostgresClient) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := checkDimensions(records, c.dimension); err != nil {
		return err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", apperrors.ErrStore, err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	batch := &pgx.Batch{}

	for _, record := range records {
		batch.Queue(upsertChunkQuery,
			record.ID,
			record.Metadata.DocID,
			record.Metadata.ChunkIndex,
			record.Metadata.Text,
			record.Metadata.Source,
			record.Metadata.Title,
			pgvector.NewVector(record.Values),
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range len(records) {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // G104: error path cleanup
			return fmt.Errorf("failed to upsert chunk %d: %w: %w", i, apperrors.ErrStore, err)
		}
	}

	// must close batch results before committing, otherwise connection is still "busy"
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w: %w", apperrors.ErrStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}

// nearest chunks by cosine distance, best first
func (c *PostgresClient) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index has %d: %w",
			len(vector), c.dimension, apperrors.ErrValidation)
	}

	if topK <= 0 {
		return []Match{}, nil
	}

	rows, err := c.pool.Query(ctx, searchChunksQuery, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	matches := []Match{}

	for rows.Next() {
		var m Match

		err := rows.Scan(
			&m.ID,
			&m.Metadata.DocID,
			&m.Metadata.ChunkIndex,
			&m.Metadata.Text,
			&m.Metadata.Source,
			&m.Metadata.Title,
			&m.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w: %w", apperrors.ErrStore, err)
		}

		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w: %w", apperrors.ErrStore, err)
	}

	return matches, nil
}

// returns the total number of chunks in the database
func (c *PostgresClient) ChunkCount(ctx context.Context) (int, error) {
	var count int

	if err := c.pool.QueryRow(ctx, getChunkCountQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get chunk count: %w: %w", apperrors.ErrStore, err)
	}

	return count, nil
}

func checkDimensions(records []VectorRecord, dimension int) error {
	for _, record := range records {
		if len(record.Values) != dimension {
			return fmt.Errorf("record %s has dimension %d, index has %d: %w",
				record.ID, len(record.Values), dimension, apperrors.ErrValidation)
		}
	}

	return nil
}
