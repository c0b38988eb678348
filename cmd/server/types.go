package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/embedcache"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/router"
	"codeberg.org/askrouter/server/internal/storage"
)

// holds all dependencies and state for the API server
type Server struct {
	db       *pgxpool.Pool // nil when running without a database
	redis    *redis.Client // nil unless CACHE_BACKEND=redis
	config   *config.Config
	services *Services
	router   *gin.Engine
}

// holds the engine, the pipeline and the clients behind them
type Services struct {
	Providers *llm.Providers
	Cache     embedcache.Store
	Documents storage.DocumentStore
	Index     storage.VectorIndex
	Curated   *curated.Engine
	Pipeline  *rag.Pipeline
	Router    *router.Router
}
