package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	cohereRerankURL    = "https://api.cohere.com/v2/rerank"
	defaultRerankModel = "rerank-english-v3.0"
)

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	ID      string `json:"id"`
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

type CohereConfig struct {
	APIKey  string
	Model   string
	URL     string // overridden in tests
	Timeout time.Duration
}

type CohereReranker struct {
	config     CohereConfig
	httpClient *http.Client
}

func NewCohereReranker(config CohereConfig) *CohereReranker {
	if config.Model == "" {
		config.Model = defaultRerankModel
	}

	if config.URL == "" {
		config.URL = cohereRerankURL
	}

	return &CohereReranker{
		config:     config,
		httpClient: httpClientWithTimeout(config.Timeout),
	}
}

func (r *CohereReranker) Enabled() bool {
	return true
}

func (r *CohereReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return []RerankResult{}, nil
	}

	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	reqBody := rerankRequest{
		Model:     r.config.Model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	}

	headers := map[string]string{"Authorization": "Bearer " + r.config.APIKey}

	var resp rerankResponse
	if err := postJSON(ctx, r.httpClient, cohereRateLimiter, r.config.URL, headers, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("rerank failed: %w", err)
	}

	results := make([]RerankResult, 0, len(resp.Results))

	for _, res := range resp.Results {
		// drop indices the API should never return rather than panic on them later
		if res.Index < 0 || res.Index >= len(documents) {
			continue
		}

		results = append(results, RerankResult{Index: res.Index, Score: res.RelevanceScore})

		if len(results) == topN {
			break
		}
	}

	return results, nil
}

// stands in for an unconfigured reranking provider
type NoopReranker struct{}

func (NoopReranker) Enabled() bool {
	return false
}

func (NoopReranker) Rerank(context.Context, string, []string, int) ([]RerankResult, error) {
	return []RerankResult{}, nil
}
