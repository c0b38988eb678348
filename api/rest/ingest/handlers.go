package ingest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/rag"
)

// *rag.Pipeline implements it
type Ingester interface {
	Ingest(ctx context.Context, text string, meta rag.Metadata) (string, error)
}

// Ingest godoc
// @Summary Ingest a document
// @Description Segments, embeds and indexes text for retrieval
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body Request true "Document"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/ingest [post]
func Ingest(pipeline Ingester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		docID, err := pipeline.Ingest(c.Request.Context(), req.Text, rag.Metadata{
			Source: req.Source,
			Title:  req.Title,
		})
		if err != nil {
			errors.InternalError(c, "failed to ingest document", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			Status: "success",
			DocID:  docID,
		})
	}
}
