package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// returned by GetDocument when nothing matches
var ErrDocumentNotFound = errors.New("document not found")

// an ingested source text
type Document struct {
	DocID      string    `json:"doc_id"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// what a vector record carries besides its values
type ChunkMetadata struct {
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	Title      string `json:"title"`
}

type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata ChunkMetadata
}

// a query hit; Score is cosine similarity, higher is closer
type Match struct {
	ID       string
	Score    float64
	Metadata ChunkMetadata
}

// selects a document by its descriptive fields
type DocumentFilter struct {
	Source string
	Title  string
}

type DocumentStore interface {
	InsertDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, docID string) (*Document, error)
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type VectorIndex interface {
	Upsert(ctx context.Context, records []VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Dimension() int
}

// builds the id of the i-th chunk of a document
func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s_%d", docID, index)
}
