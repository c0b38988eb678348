package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/errors"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	var (
		db          *pgxpool.Pool
		redisClient *redis.Client
		err         error
	)

	if cfg.DatabaseURL != "" {
		db, err = newPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	if cfg.CacheBackend == config.CacheBackendRedis {
		redisClient, err = newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			closeQuietly(db, nil)
			return nil, err
		}
	}

	services, err := InitializeServices(ctx, cfg, db, redisClient)
	if err != nil {
		closeQuietly(db, redisClient)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	server := &Server{
		db:       db,
		redis:    redisClient,
		config:   cfg,
		services: services,
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		closeQuietly(db, redisClient)
		return nil, err
	}

	return server, nil
}

func newPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w: %w", errors.ErrConfiguration, err)
	}

	// keep the pool small so managed poolers are not exhausted
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// PgBouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w: %w", errors.ErrStore, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w: %w", errors.ErrStore, err)
	}

	return db, nil
}

func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w: %w", errors.ErrConfiguration, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w: %w", errors.ErrStore, err)
	}

	return client, nil
}

func closeQuietly(db *pgxpool.Pool, redisClient *redis.Client) {
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup
	}

	if db != nil {
		db.Close()
	}
}

// releases the database and redis connections
func (s *Server) Close() {
	closeQuietly(s.db, s.redis)
}
