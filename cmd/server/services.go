package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/askrouter/server/internal/chunker"
	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/embedcache"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/router"
	"codeberg.org/askrouter/server/internal/storage"
)

// creates and configures all service clients
// db and redisClient may be nil depending on the configured backends
func InitializeServices(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client) (*Services, error) {
	providers, err := llm.NewProviders(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create providers: %w", err)
	}

	cache, err := newCacheStore(ctx, cfg, db, redisClient)
	if err != nil {
		return nil, err
	}

	var (
		docs  storage.DocumentStore
		index storage.VectorIndex
	)

	if db != nil {
		client := storage.NewClientFromPool(db, cfg.EmbeddingDimension)
		if err := client.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		docs, index = client, client
	} else {
		logger.Warn("no DATABASE_URL, documents and vectors are kept in memory")
		memIndex := storage.NewMemoryIndex(cfg.EmbeddingDimension)
		docs, index = storage.NewMemoryDocuments(memIndex), memIndex
	}

	segmenter, err := chunker.New(chunker.Options{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap})
	if err != nil {
		return nil, fmt.Errorf("failed to create segmenter: %w", err)
	}

	engine := curated.New(
		curated.MultiSource{curated.NewFileSource(cfg.CuratedPath), curated.GreetingSource{}},
		providers.Embedder,
		cache,
		curated.WithThreshold(cfg.SimilarityThreshold),
		curated.WithConcurrency(cfg.EmbedConcurrency),
	)

	pipeline := rag.New(
		segmenter,
		providers.Embedder,
		providers.Reranker,
		providers.Generator,
		docs,
		index,
		rag.WithTopK(cfg.RetrievalTopK),
		rag.WithTopN(cfg.RerankTopN),
		rag.WithCostPerToken(cfg.CostPerToken),
	)

	return &Services{
		Providers: providers,
		Cache:     cache,
		Documents: docs,
		Index:     index,
		Curated:   engine,
		Pipeline:  pipeline,
		Router:    router.New(engine, pipeline),
	}, nil
}

func newCacheStore(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client) (embedcache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		return embedcache.NewRedisStore(redisClient), nil
	case config.CacheBackendMemory:
		return embedcache.NewMemoryStore(), nil
	default:
		store := embedcache.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return store, nil
	}
}
