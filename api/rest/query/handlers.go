package query

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/router"
)

// *router.Router implements it
type Router interface {
	Route(ctx context.Context, query string) *router.Result
}

// Query godoc
// @Summary Answer a question
// @Description Routes the query through exact and semantic curated matching, then retrieval-augmented generation
// @Tags query
// @Accept json
// @Produce json
// @Param request body Request true "Question"
// @Success 200 {object} router.Result
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/query [post]
func Query(r Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		q := strings.TrimSpace(req.Query)
		if q == "" {
			errors.ValidationError(c, fmt.Errorf("query must not be blank: %w", errors.ErrValidation))
			return
		}

		c.JSON(http.StatusOK, r.Route(c.Request.Context(), q))
	}
}
