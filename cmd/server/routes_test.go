package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/askrouter/server/internal/chunker"
	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/embedcache"
	"codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/router"
	"codeberg.org/askrouter/server/internal/storage"
)

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, _ string, _ llm.EmbedMode) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (constEmbedder) Dimension() int { return 3 }
func (constEmbedder) Model() string  { return "const" }

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, _ string) (*llm.Generation, error) {
	return &llm.Generation{Text: "generated", Tokens: 3}, nil
}

func (echoGenerator) Model() string { return "echo" }

func newTestServer(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	segmenter, err := chunker.New(chunker.DefaultOptions())
	require.NoError(t, err)

	engine := curated.New(curated.StaticSource{{
		ID:       "refund-policy",
		Question: "What is your refund policy?",
		Answer:   curated.Literal("No refunds after 30 days."),
		Kind:     curated.KindFAQ,
	}}, constEmbedder{}, embedcache.NewMemoryStore())
	require.NoError(t, engine.Initialize(context.Background()))

	index := storage.NewMemoryIndex(3)
	docs := storage.NewMemoryDocuments(index)
	pipeline := rag.New(segmenter, constEmbedder{}, llm.NoopReranker{}, echoGenerator{}, docs, index)

	srv := &Server{
		config: cfg,
		services: &Services{
			Curated:  engine,
			Pipeline: pipeline,
			Router:   router.New(engine, pipeline),
		},
		router: gin.New(),
	}

	require.NoError(t, RegisterRoutes(srv.router, srv))

	return srv.router
}

func postQuery(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	return w
}

func TestRoutes_HealthAndReady(t *testing.T) {
	r := newTestServer(t, &config.Config{RateLimit: "100-M"})

	for _, path := range []string{"/health", "/api/v1/ping", "/api/v1/ready"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRoutes_QueryExactMatch(t *testing.T) {
	r := newTestServer(t, &config.Config{RateLimit: "100-M"})

	w := postQuery(r, `{"query": "what is your refund policy"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result router.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, router.SourceFAQExact, result.Source)
	assert.Equal(t, "No refunds after 30 days.", result.Answer)
}

func TestRoutes_AdminDisabledWithoutKey(t *testing.T) {
	r := newTestServer(t, &config.Config{RateLimit: "100-M"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_RateLimited(t *testing.T) {
	r := newTestServer(t, &config.Config{RateLimit: "2-M"})

	assert.Equal(t, http.StatusOK, postQuery(r, `{"query": "refund policy"}`).Code)
	assert.Equal(t, http.StatusOK, postQuery(r, `{"query": "refund policy"}`).Code)

	w := postQuery(r, `{"query": "refund policy"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeTooManyRequests, resp.Error)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	r := newTestServer(t, &config.Config{RateLimit: "100-M"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil)
	req.Header.Set("Origin", "https://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware_InvalidFormat(t *testing.T) {
	_, err := RateLimitMiddleware("lots", nil)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}
