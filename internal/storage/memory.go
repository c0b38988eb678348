package storage

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// implements DocumentStore in process memory
// when built with an index, deleting a document also drops its chunks
type MemoryDocuments struct {
	mu    sync.RWMutex
	docs  map[string]Document
	index *MemoryIndex
}

// index may be nil
func NewMemoryDocuments(index *MemoryIndex) *MemoryDocuments {
	return &MemoryDocuments{docs: make(map[string]Document), index: index}
}

func (m *MemoryDocuments) InsertDocument(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	m.docs[doc.DocID] = doc

	return nil
}

func (m *MemoryDocuments) GetDocument(_ context.Context, docID string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	return &doc, nil
}

// newest first, like the postgres query
func (m *MemoryDocuments) FindDocuments(_ context.Context, filter DocumentFilter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []Document

	for _, doc := range m.docs {
		if doc.Source == filter.Source && doc.Title == filter.Title {
			found = append(found, doc)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].DocID < found[j].DocID
		}

		return found[i].CreatedAt.After(found[j].CreatedAt)
	})

	return found, nil
}

func (m *MemoryDocuments) DeleteDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	delete(m.docs, docID)
	m.mu.Unlock()

	if m.index == nil {
		return nil
	}

	return m.index.DeleteByDocument(ctx, docID)
}

// implements VectorIndex with a linear cosine scan
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	records   map[string]VectorRecord
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		records:   make(map[string]VectorRecord),
	}
}

func (m *MemoryIndex) Dimension() int {
	return m.dimension
}

func (m *MemoryIndex) Upsert(_ context.Context, records []VectorRecord) error {
	if err := checkDimensions(records, m.dimension); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		if _, exists := m.records[record.ID]; !exists {
			m.order = append(m.order, record.ID)
		}

		record.Values = append([]float32(nil), record.Values...)
		m.records[record.ID] = record
	}

	return nil
}

func (m *MemoryIndex) Query(_ context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) != m.dimension {
		return nil, checkDimensions([]VectorRecord{{ID: "query", Values: vector}}, m.dimension)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.order))

	for _, id := range m.order {
		record := m.records[id]
		matches = append(matches, Match{
			ID:       id,
			Score:    Cosine(vector, record.Values),
			Metadata: record.Metadata,
		})
	}

	// stable so equal scores keep insertion order
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK < 0 {
		topK = 0
	}

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// removes every record belonging to docID
func (m *MemoryIndex) DeleteByDocument(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]

	for _, id := range m.order {
		if m.records[id].Metadata.DocID == docID {
			delete(m.records, id)
			continue
		}

		kept = append(kept, id)
	}

	m.order = kept

	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}

// cosine similarity of two vectors
// 0 when either has zero magnitude or their lengths differ
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
