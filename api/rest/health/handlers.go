package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/errors"
)

const (
	serviceName    = "askrouter"
	serviceVersion = "1.0.0"
)

// Handler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}

// StatsProvider is implemented by *curated.Engine
type StatsProvider interface {
	Stats() curated.Stats
}

// ReadyHandler godoc
// @Summary Readiness with curated set size
// @Tags health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/ready [get]
func ReadyHandler(engine StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := engine.Stats()
		if stats.LoadedAt.IsZero() {
			errors.Unavailable(c, "curated set is not loaded yet")
			return
		}

		c.JSON(http.StatusOK, ReadinessResponse{
			Status:         "ready",
			CuratedEntries: stats.Entries,
			CuratedVectors: stats.Vectors,
		})
	}
}
