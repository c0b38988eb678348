package embedcache

import (
	"context"
	"sync"
	"time"
)

// implements Store in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// creates a new in-memory embedding store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) Get(_ context.Context, entryID, contentHash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[recordKey(entryID, contentHash)]
	if !exists {
		return nil, ErrNotFound
	}

	record.Vector = append([]float32(nil), record.Vector...)

	return &record, nil
}

func (s *MemoryStore) Put(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	record.Vector = append([]float32(nil), record.Vector...)
	s.records[recordKey(record.EntryID, record.ContentHash)] = record

	return nil
}

// number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func recordKey(entryID, contentHash string) string {
	return entryID + ":" + contentHash
}
