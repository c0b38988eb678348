package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

const (
	defaultOpenAIModel       = "text-embedding-3-small"
	openaiEmbeddingDimension = 1536
)

// output sizes of the known models; the dimensions parameter is only sent to shrink them
// (text-embedding-ada-002 rejects it outright)
var openaiNativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

type OpenAIConfig struct {
	APIKey    string
	Model     string // e.g., "text-embedding-3-small"
	Dimension int
	BaseURL   string // OpenAI-compatible servers; empty means api.openai.com
}

// OpenAI-compatible embeddings through langchaingo
// document mode uses EmbedDocuments, query mode EmbedQuery
type OpenAIEmbedder struct {
	config   OpenAIConfig
	embedder embeddings.Embedder
}

func NewOpenAIEmbedder(config OpenAIConfig) (*OpenAIEmbedder, error) {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.Dimension == 0 {
		config.Dimension = openaiEmbeddingDimension
	}

	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	}

	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	if config.Dimension != nativeDimension(config.Model) {
		opts = append(opts, openai.WithEmbeddingDimensions(config.Dimension))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIEmbedder{
		config:   config,
		embedder: embedder,
	}, nil
}

func nativeDimension(model string) int {
	if dim, ok := openaiNativeDimensions[model]; ok {
		return dim
	}

	return openaiEmbeddingDimension
}

func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.config.Dimension
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	var (
		vector []float32
		err    error
	)

	if mode == ModeQuery {
		vector, err = e.embedder.EmbedQuery(ctx, text)
	} else {
		var vectors [][]float32

		vectors, err = e.embedder.EmbedDocuments(ctx, []string{text})
		if err == nil && len(vectors) > 0 {
			vector = vectors[0]
		}
	}

	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "model_not_found") || strings.Contains(msg, "does not exist") {
			return nil, fmt.Errorf("%w: %s: %w: %w", ErrModelNotFound, e.config.Model, apperrors.ErrProviderUnavailable, err)
		}

		return nil, fmt.Errorf("failed to generate embedding: %w: %w", apperrors.ErrProviderUnavailable, err)
	}

	if len(vector) == 0 {
		return nil, fmt.Errorf("no embedding returned: %w", apperrors.ErrProviderUnavailable)
	}

	if len(vector) != e.config.Dimension {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d: %w",
			len(vector), e.config.Dimension, apperrors.ErrProviderUnavailable)
	}

	return vector, nil
}
