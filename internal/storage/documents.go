package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/logger"
)

func (c *PostgresClient) InsertDocument(ctx context.Context, doc Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := c.pool.Exec(ctx, insertDocumentQuery,
		doc.DocID,
		doc.Text,
		doc.Source,
		doc.Title,
		doc.ChunkCount,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}

func (c *PostgresClient) GetDocument(ctx context.Context, docID string) (*Document, error) {
	return c.scanDocument(c.pool.QueryRow(ctx, getDocumentQuery, docID))
}

// returns every document with the given source and title, newest first
func (c *PostgresClient) FindDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error) {
	rows, err := c.pool.Query(ctx, findDocumentsQuery, filter.Source, filter.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w: %w", apperrors.ErrStore, err)
	}

	defer rows.Close()

	var docs []Document

	for rows.Next() {
		doc, err := c.scanDocument(rows)
		if err != nil {
			return nil, err
		}

		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w: %w", apperrors.ErrStore, err)
	}

	return docs, nil
}

// removes a document and its chunks in one transaction
func (c *PostgresClient) DeleteDocument(ctx context.Context, docID string) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", apperrors.ErrStore, err)
	}

	// no-op once committed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, deleteDocChunksQuery, docID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w: %w", apperrors.ErrStore, err)
	}

	if _, err := tx.Exec(ctx, deleteDocumentQuery, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w: %w", apperrors.ErrStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}

func (c *PostgresClient) scanDocument(row pgx.Row) (*Document, error) {
	var doc Document

	err := row.Scan(&doc.DocID, &doc.Text, &doc.Source, &doc.Title, &doc.ChunkCount, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w: %w", apperrors.ErrStore, err)
	}

	return &doc, nil
}
