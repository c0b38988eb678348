package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/rag"
)

type mockIngester struct {
	err      error
	lastText string
	lastMeta rag.Metadata
}

func (m *mockIngester) Ingest(_ context.Context, text string, meta rag.Metadata) (string, error) {
	m.lastText = text
	m.lastMeta = meta

	if m.err != nil {
		return "", m.err
	}

	return "doc-123", nil
}

func post(t *testing.T, ing Ingester, payload string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), ing)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	return w
}

func TestIngest_Success(t *testing.T) {
	ing := &mockIngester{}

	w := post(t, ing, `{"text": "hello world", "title": "Greeting"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, Response{Status: "success", DocID: "doc-123"}, resp)
	assert.Equal(t, "hello world", ing.lastText)
	assert.Equal(t, rag.Metadata{Title: "Greeting"}, ing.lastMeta)
}

func TestIngest_MissingText(t *testing.T) {
	w := post(t, &mockIngester{}, `{"title": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_ValidationFromPipeline(t *testing.T) {
	ing := &mockIngester{err: fmt.Errorf("text is required: %w", errors.ErrValidation)}

	w := post(t, ing, `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_StoreFailure(t *testing.T) {
	ing := &mockIngester{err: fmt.Errorf("failed to index: %w", errors.ErrStore)}

	w := post(t, ing, `{"text": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeServerError, body.Error)
}
