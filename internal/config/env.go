package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"codeberg.org/askrouter/server/internal/errors"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds the configuration from a lookup function (os.Getenv in production, a map in tests)
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}

		return fallback
	}

	cfg := &Config{
		Environment:  env("ENVIRONMENT", "development"),
		Port:         env("PORT", "8080"),
		DatabaseURL:  getenv("DATABASE_URL"),
		CacheBackend: env("CACHE_BACKEND", CacheBackendPostgres),
		RedisURL:     getenv("REDIS_URL"),

		Embedder: ProviderConfig{
			Provider: env("EMBEDDER_PROVIDER", ProviderGemini),
		},
		Generator: ProviderConfig{
			Provider: env("GENERATOR_PROVIDER", ProviderGemini),
		},
		Reranker: ProviderConfig{
			Provider: ProviderCohere,
			APIKey:   getenv("COHERE_API_KEY"),
			Model:    env("RERANK_MODEL", "rerank-english-v3.0"),
		},

		CuratedPath: env("CURATED_PATH", "./data/faqs.yaml"),
		RateLimit:   env("RATE_LIMIT", "60-M"),
		AdminAPIKey: getenv("ADMIN_API_KEY"),
	}

	cfg.Embedder.APIKey = apiKeyFor(cfg.Embedder.Provider, getenv)
	cfg.Generator.APIKey = apiKeyFor(cfg.Generator.Provider, getenv)

	defaultDimension := 768

	switch cfg.Embedder.Provider {
	case ProviderOpenAI:
		defaultDimension = 1536
		cfg.Embedder.Model = env("EMBEDDER_MODEL", "text-embedding-3-small")
		cfg.EmbedderFallbackModel = env("EMBEDDER_FALLBACK_MODEL", "text-embedding-ada-002")
	default:
		cfg.Embedder.Model = env("EMBEDDER_MODEL", "models/text-embedding-004")
		cfg.EmbedderFallbackModel = env("EMBEDDER_FALLBACK_MODEL", "models/embedding-001")
	}

	switch cfg.Generator.Provider {
	case ProviderAnthropic:
		cfg.Generator.Model = env("GENERATOR_MODEL", "claude-3-5-haiku-20241022")
	default:
		cfg.Generator.Model = env("GENERATOR_MODEL", "gemini-2.5-flash")
	}

	var err error

	if cfg.EmbeddingDimension, err = intVar(getenv, "EMBEDDING_DIMENSION", defaultDimension); err != nil {
		return nil, err
	}

	if cfg.GeneratorMaxTokens, err = intVar(getenv, "GENERATOR_MAX_TOKENS", 1024); err != nil {
		return nil, err
	}

	temperature, err := floatVar(getenv, "GENERATOR_TEMPERATURE", 0.2)
	if err != nil {
		return nil, err
	}

	cfg.GeneratorTemperature = float32(temperature)

	if cfg.SimilarityThreshold, err = floatVar(getenv, "SIMILARITY_THRESHOLD", 0.70); err != nil {
		return nil, err
	}

	if cfg.EmbedConcurrency, err = intVar(getenv, "EMBED_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	if cfg.RetrievalTopK, err = intVar(getenv, "RETRIEVAL_TOP_K", 10); err != nil {
		return nil, err
	}

	if cfg.RerankTopN, err = intVar(getenv, "RERANK_TOP_N", 5); err != nil {
		return nil, err
	}

	if cfg.ChunkSize, err = intVar(getenv, "CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}

	if cfg.ChunkOverlap, err = intVar(getenv, "CHUNK_OVERLAP", 150); err != nil {
		return nil, err
	}

	// rough Gemini Flash price per token
	if cfg.CostPerToken, err = floatVar(getenv, "COST_PER_TOKEN", 0.000000125); err != nil {
		return nil, err
	}

	timeoutSecs, err := intVar(getenv, "PROVIDER_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	cfg.ProviderTimeout = time.Duration(timeoutSecs) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks required values and cross-field constraints
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && (c.CacheBackend == CacheBackendPostgres || c.Environment == "production") {
		return fmt.Errorf("DATABASE_URL environment variable is required: %w", errors.ErrConfiguration)
	}

	if c.Embedder.APIKey == "" {
		return fmt.Errorf("API key for embedder provider %q is required: %w", c.Embedder.Provider, errors.ErrConfiguration)
	}

	if c.Generator.APIKey == "" {
		return fmt.Errorf("API key for generator provider %q is required: %w", c.Generator.Provider, errors.ErrConfiguration)
	}

	switch c.CacheBackend {
	case CacheBackendPostgres, CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis: %w", errors.ErrConfiguration)
		}
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q: %w", c.CacheBackend, errors.ErrConfiguration)
	}

	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive: %w", errors.ErrConfiguration)
	}

	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE): %w", errors.ErrConfiguration)
	}

	if c.RerankTopN <= 0 || c.RetrievalTopK <= 0 || c.RerankTopN > c.RetrievalTopK {
		return fmt.Errorf("RERANK_TOP_N must be in (0, RETRIEVAL_TOP_K]: %w", errors.ErrConfiguration)
	}

	return nil
}

// returns the environment variable holding the key for the given provider
func apiKeyFor(provider string, getenv func(string) string) string {
	switch provider {
	case ProviderOpenAI:
		return getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return getenv("ANTHROPIC_API_KEY")
	default:
		return getenv("GOOGLE_API_KEY")
	}
}

func intVar(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, errors.ErrConfiguration)
	}

	return val, nil
}

func floatVar(getenv func(string) string, key string, fallback float64) (float64, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, errors.ErrConfiguration)
	}

	return val, nil
}
