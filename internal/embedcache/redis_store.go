package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

const keyEmbedding = "curated:embedding:%s:%s"

// implements Store using Redis, one JSON value per record without expiry
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed embedding store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, entryID, contentHash string) (*Record, error) {
	raw, err := s.client.Get(ctx, fmt.Sprintf(keyEmbedding, entryID, contentHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cached embedding: %w: %w", apperrors.ErrStore, err)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cached embedding: %w: %w", apperrors.ErrStore, err)
	}

	return &record, nil
}

func (s *RedisStore) Put(ctx context.Context, record Record) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	key := fmt.Sprintf(keyEmbedding, record.EntryID, record.ContentHash)
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store embedding: %w: %w", apperrors.ErrStore, err)
	}

	return nil
}
