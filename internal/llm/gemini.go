package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

const (
	geminiBaseURL            = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiEmbedModel  = "models/text-embedding-004"
	defaultGeminiGenModel    = "gemini-2.5-flash"
	geminiEmbeddingDimension = 768
	geminiTaskDocument       = "RETRIEVAL_DOCUMENT"
	geminiTaskQuery          = "RETRIEVAL_QUERY"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	TaskType             string        `json:"taskType,omitempty"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type GeminiConfig struct {
	APIKey      string
	Model       string // e.g., "models/text-embedding-004" or "gemini-2.5-flash"
	Dimension   int    // embeddings only
	MaxTokens   int    // generation only
	Temperature float32
	BaseURL     string // overridden in tests
	Timeout     time.Duration
}

type GeminiEmbedder struct {
	config     GeminiConfig
	httpClient *http.Client
}

func NewGeminiEmbedder(config GeminiConfig) *GeminiEmbedder {
	if config.Model == "" {
		config.Model = defaultGeminiEmbedModel
	}

	if config.Dimension == 0 {
		config.Dimension = geminiEmbeddingDimension
	}

	if config.BaseURL == "" {
		config.BaseURL = geminiBaseURL
	}

	return &GeminiEmbedder{
		config:     config,
		httpClient: httpClientWithTimeout(config.Timeout),
	}
}

func (e *GeminiEmbedder) Model() string {
	return e.config.Model
}

func (e *GeminiEmbedder) Dimension() int {
	return e.config.Dimension
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	model := geminiModelPath(e.config.Model)

	reqBody := geminiEmbedRequest{
		Model:    model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: geminiTaskType(mode),
	}

	// native size needs no truncation; older models reject the field
	if e.config.Dimension != geminiEmbeddingDimension {
		reqBody.OutputDimensionality = e.config.Dimension
	}

	var resp geminiEmbedResponse

	url := fmt.Sprintf("%s/%s:embedContent", e.config.BaseURL, model)
	headers := map[string]string{"x-goog-api-key": e.config.APIKey}

	if err := postJSON(ctx, e.httpClient, geminiRateLimiter, url, headers, reqBody, &resp); err != nil {
		if isModelNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrModelNotFound, e.config.Model, err)
		}

		return nil, err
	}

	values := resp.Embedding.Values
	if len(values) == 0 {
		return nil, fmt.Errorf("no embedding returned: %w", apperrors.ErrProviderUnavailable)
	}

	if len(values) != e.config.Dimension {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d: %w",
			len(values), e.config.Dimension, apperrors.ErrProviderUnavailable)
	}

	return values, nil
}

type GeminiGenerator struct {
	config     GeminiConfig
	httpClient *http.Client
}

func NewGeminiGenerator(config GeminiConfig) *GeminiGenerator {
	if config.Model == "" {
		config.Model = defaultGeminiGenModel
	}

	if config.BaseURL == "" {
		config.BaseURL = geminiBaseURL
	}

	return &GeminiGenerator{
		config:     config,
		httpClient: httpClientWithTimeout(config.Timeout),
	}
}

func (g *GeminiGenerator) Model() string {
	return g.config.Model
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Generation, error) {
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: g.config.MaxTokens,
			Temperature:     g.config.Temperature,
		},
	}

	var resp geminiGenerateResponse

	url := fmt.Sprintf("%s/%s:generateContent", g.config.BaseURL, geminiModelPath(g.config.Model))
	headers := map[string]string{"x-goog-api-key": g.config.APIKey}

	if err := postJSON(ctx, g.httpClient, geminiRateLimiter, url, headers, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response: %w", apperrors.ErrProviderUnavailable)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &Generation{
		Text:   strings.TrimSpace(text.String()),
		Tokens: resp.UsageMetadata.TotalTokenCount,
	}, nil
}

func geminiModelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}

	return "models/" + model
}

func geminiTaskType(mode EmbedMode) string {
	if mode == ModeQuery {
		return geminiTaskQuery
	}

	return geminiTaskDocument
}

// the API answers 404, or 400 with "... is not found", for an unknown model
func isModelNotFound(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}

	if statusErr.StatusCode == http.StatusNotFound {
		return true
	}

	return strings.Contains(strings.ToLower(statusErr.Body), "not found")
}
