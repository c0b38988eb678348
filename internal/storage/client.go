package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

// implements DocumentStore and VectorIndex on PostgreSQL with pgvector
type PostgresClient struct {
	pool      *pgxpool.Pool
	dimension int
}

// wraps a pool owned by the caller
func NewClientFromPool(pool *pgxpool.Pool, dimension int) *PostgresClient {
	return &PostgresClient{pool: pool, dimension: dimension}
}

func (c *PostgresClient) Dimension() int {
	return c.dimension
}

// creates the documents and doc_chunks tables and the HNSW cosine index
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	statements := []string{
		createExtensionQuery,
		createDocumentsQuery,
		createDocumentsLookupIndexQuery,
		fmt.Sprintf(createChunksQueryTemplate, c.dimension),
		createChunksIndexQuery,
	}

	for _, stmt := range statements {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w: %w", apperrors.ErrStore, err)
		}
	}

	return nil
}
