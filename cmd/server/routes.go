package main

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/askrouter/server/api/rest/admin"
	"codeberg.org/askrouter/server/api/rest/health"
	"codeberg.org/askrouter/server/api/rest/ingest"
	"codeberg.org/askrouter/server/api/rest/query"
	"codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/logger"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware())
	router.GET("/health", health.Handler)

	rateLimit, err := RateLimitMiddleware(server.config.RateLimit, server.redis)
	if err != nil {
		return err
	}

	v1 := router.Group("/api/v1")
	v1.GET("/ping", health.PingHandler)
	v1.GET("/ready", health.ReadyHandler(server.services.Curated))

	limited := v1.Group("", rateLimit)

	{
		query.RegisterRoutes(limited, server.services.Router)
		ingest.RegisterRoutes(limited, server.services.Pipeline)
		admin.RegisterRoutes(limited, server.services.Curated, server.config.AdminAPIKey)
	}

	return nil
}

// allows any origin; the API carries no cookies
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", admin.KeyHeader},
		ExposeHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	})
}

// per-client-IP limit; shared through redis when one is configured
func RateLimitMiddleware(formatted string, redisClient *redis.Client) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w: %w", formatted, errors.ErrConfiguration, err)
	}

	var store limiter.Store

	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "askrouter:ratelimit",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w: %w", errors.ErrStore, err)
		}
	} else {
		store = memory.NewStore()
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			errors.InternalError(c, "rate limiter failed", err)
		}),
	), nil
}

// logs one line per request through the shared logger
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
