package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// returned by Get when no vector is stored for the (entry, hash) pair
var ErrNotFound = errors.New("embedding not cached")

// a cached curated-question vector
// keyed on EntryID and ContentHash together, so editing a question invalidates it
// Model names the embedding model that produced Vector
type Record struct {
	EntryID     string    `json:"entry_id"`
	ContentHash string    `json:"content_hash"`
	Model       string    `json:"model"`
	Vector      []float32 `json:"vector"`
	SourceText  string    `json:"source_text"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// persists curated embeddings across restarts
type Store interface {
	Get(ctx context.Context, entryID, contentHash string) (*Record, error)
	Put(ctx context.Context, record Record) error
}

// hex SHA-256 of the exact text
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
