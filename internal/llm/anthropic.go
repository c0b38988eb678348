package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	defaultMaxTokens     = 1024
	defaultTemperature   = 0.2
)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey      string
	Model       string  // e.g., "claude-3-5-haiku-20241022"
	MaxTokens   int     // max tokens for response
	Temperature float32 // 0.0 to 1.0
	URL         string  // overridden in tests
	Timeout     time.Duration
}

type AnthropicGenerator struct {
	config     AnthropicConfig
	httpClient *http.Client
}

func NewAnthropicGenerator(config AnthropicConfig) *AnthropicGenerator {
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	if config.URL == "" {
		config.URL = anthropicMessagesURL
	}

	return &AnthropicGenerator{
		config:     config,
		httpClient: httpClientWithTimeout(config.Timeout),
	}
}

func (g *AnthropicGenerator) Model() string {
	return g.config.Model
}

// sends the prompt as a single user message; tokens are input plus output
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*Generation, error) {
	reqBody := messagesRequest{
		Model:       g.config.Model,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         g.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var apiResp messagesResponse
	if err := postJSON(ctx, g.httpClient, anthropicRateLimiter, g.config.URL, headers, reqBody, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("no content in response: %w", apperrors.ErrProviderUnavailable)
	}

	return &Generation{
		Text:   strings.TrimSpace(apiResp.Content[0].Text),
		Tokens: apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
	}, nil
}
