package config

import "time"

type Config struct {
	Environment string
	Port        string

	DatabaseURL  string
	CacheBackend string // postgres, redis or memory
	RedisURL     string

	Embedder  ProviderConfig
	Generator ProviderConfig
	Reranker  ProviderConfig

	EmbeddingDimension    int
	EmbedderFallbackModel string
	GeneratorMaxTokens    int
	GeneratorTemperature  float32

	CuratedPath         string
	SimilarityThreshold float64
	EmbedConcurrency    int

	RetrievalTopK int
	RerankTopN    int
	ChunkSize     int
	ChunkOverlap  int
	CostPerToken  float64

	RateLimit       string // ulule formatted, e.g. "60-M"
	AdminAPIKey     string // empty disables /api/v1/admin
	ProviderTimeout time.Duration
}

// a single external model provider
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
}

// reports whether a reranker key was supplied
func (c *Config) RerankerEnabled() bool {
	return c.Reranker.APIKey != ""
}

type Flags struct {
	Path    string
	Source  string
	Title   string
	Replace bool
}

const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
	CacheBackendMemory   = "memory"

	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCohere    = "cohere"
)
