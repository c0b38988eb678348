package admin

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/errors"
)

// *curated.Engine implements it
type Reloader interface {
	Initialize(ctx context.Context) error
	Stats() curated.Stats
}

// Reload godoc
// @Summary Reload the curated set
// @Description Re-reads the curated sources and rebuilds the exact and semantic indexes; unchanged entries reuse cached embeddings
// @Tags admin
// @Produce json
// @Success 200 {object} ReloadResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/admin/reload [post]
// @Security AdminKeyAuth
func Reload(engine Reloader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.Initialize(c.Request.Context()); err != nil {
			errors.InternalError(c, "failed to reload curated entries", err)
			return
		}

		c.JSON(http.StatusOK, ReloadResponse{
			Status: "reloaded",
			Stats:  engine.Stats(),
		})
	}
}

// rejects requests without the configured admin key; an empty key disables the group
func KeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			errors.NotFound(c, "")
			c.Abort()

			return
		}

		given := c.GetHeader(KeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
				Error:   errors.CodeUnauthorized,
				Message: "admin key required",
			})
			c.Abort()

			return
		}

		c.Next()
	}
}
