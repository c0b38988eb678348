package llm

import (
	"fmt"

	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/errors"
)

// builds the embedder, generator and reranker selected by the configuration
func NewProviders(cfg *config.Config) (*Providers, error) {
	embedder, err := newEmbedder(cfg, cfg.Embedder.Model)
	if err != nil {
		return nil, err
	}

	if cfg.EmbedderFallbackModel != "" && cfg.EmbedderFallbackModel != cfg.Embedder.Model {
		fallback, err := newEmbedder(cfg, cfg.EmbedderFallbackModel)
		if err != nil {
			return nil, err
		}

		embedder = WithModelFallback(embedder, fallback)
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	var reranker Reranker = NoopReranker{}
	if cfg.RerankerEnabled() {
		reranker = NewCohereReranker(CohereConfig{
			APIKey:  cfg.Reranker.APIKey,
			Model:   cfg.Reranker.Model,
			Timeout: cfg.ProviderTimeout,
		})
	}

	return &Providers{
		Embedder:  embedder,
		Generator: generator,
		Reranker:  reranker,
	}, nil
}

func newEmbedder(cfg *config.Config, model string) (Embedder, error) {
	switch cfg.Embedder.Provider {
	case config.ProviderGemini:
		return NewGeminiEmbedder(GeminiConfig{
			APIKey:    cfg.Embedder.APIKey,
			Model:     model,
			Dimension: cfg.EmbeddingDimension,
			Timeout:   cfg.ProviderTimeout,
		}), nil
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:    cfg.Embedder.APIKey,
			Model:     model,
			Dimension: cfg.EmbeddingDimension,
		})
	default:
		return nil, fmt.Errorf("unsupported embedder provider %q: %w", cfg.Embedder.Provider, errors.ErrConfiguration)
	}
}

func newGenerator(cfg *config.Config) (TextGenerator, error) {
	switch cfg.Generator.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(GeminiConfig{
			APIKey:      cfg.Generator.APIKey,
			Model:       cfg.Generator.Model,
			MaxTokens:   cfg.GeneratorMaxTokens,
			Temperature: cfg.GeneratorTemperature,
			Timeout:     cfg.ProviderTimeout,
		}), nil
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(AnthropicConfig{
			APIKey:      cfg.Generator.APIKey,
			Model:       cfg.Generator.Model,
			MaxTokens:   cfg.GeneratorMaxTokens,
			Temperature: cfg.GeneratorTemperature,
			Timeout:     cfg.ProviderTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider %q: %w", cfg.Generator.Provider, errors.ErrConfiguration)
	}
}
