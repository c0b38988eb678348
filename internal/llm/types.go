package llm

import (
	"context"
	"errors"
)

// how the provider should bias an embedding
type EmbedMode string

const (
	// text being indexed (curated questions, document chunks)
	ModeDocument EmbedMode = "document"

	// search-time text
	ModeQuery EmbedMode = "query"
)

// returned (wrapped) when the requested model identifier does not exist for the key
var ErrModelNotFound = errors.New("embedding model not found")

// generates fixed-dimension embeddings from text
type Embedder interface {
	Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error)
	Dimension() int
	Model() string
}

// produces free text from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
	Model() string
}

// reorders candidate texts by relevance to the query
// implementations return at most topN results, best first, and nothing for an empty candidate list
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
	Enabled() bool
}

type Generation struct {
	Text   string
	Tokens int
}

// Index points into the candidate slice passed to Rerank
type RerankResult struct {
	Index int
	Score float64
}

// the provider set the server wires into the engine and the pipeline
type Providers struct {
	Embedder  Embedder
	Generator TextGenerator
	Reranker  Reranker
}
