package rag

import (
	"time"

	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/storage"
)

const (
	DefaultTopK         = 10
	DefaultTopN         = 5
	DefaultCostPerToken = 0.000000125

	defaultSource   = "paste"
	titlePreviewLen = 50
)

// fixed text the generator is told to emit when the context is insufficient
const RefusalText = "The provided documents do not contain enough information to answer this question."

// splits text into chunks; *chunker.Segmenter implements it
type Segmenter interface {
	Segment(text string) []string
}

// orchestrates ingest (segment, embed, index) and answer (retrieve, rerank, generate)
type Pipeline struct {
	segmenter Segmenter
	embedder  llm.Embedder
	reranker  llm.Reranker
	generator llm.TextGenerator
	docs      storage.DocumentStore
	index     storage.VectorIndex

	topK         int
	topN         int
	costPerToken float64
	now          func() time.Time
}

// descriptive fields attached to an ingested document
type Metadata struct {
	Source string `json:"source"`
	Title  string `json:"title"`
}

// a chunk used to ground an answer
type Source struct {
	Text       string  `json:"text"`
	DocID      string  `json:"doc_id"`
	ChunkIndex int     `json:"chunk_index"`
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`

	// nil when the reranker did not score this chunk
	RerankScore *float64 `json:"rerank_score,omitempty"`
}

type Metrics struct {
	ElapsedSeconds float64 `json:"time_seconds"`
	Tokens         int     `json:"tokens"`
	CostEstimate   float64 `json:"cost_estimate"`
}

type GroundedResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Metrics Metrics  `json:"metrics"`
}
