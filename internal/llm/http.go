package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "codeberg.org/askrouter/server/internal/errors"
)

// shared HTTP client for provider calls
// reuses connection pool and timeout configuration
var providerHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// per-vendor rate limiters (requests/second, burst)
var (
	geminiRateLimiter    = rate.NewLimiter(20, 10)
	anthropicRateLimiter = rate.NewLimiter(50, 10)
	cohereRateLimiter    = rate.NewLimiter(10, 5)
)

// a non-200 answer from a provider API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return apperrors.ErrProviderUnavailable
}

// marshals body, waits on the limiter, posts and decodes a 200 response into out
func postJSON(
	ctx context.Context,
	client *http.Client,
	limiter *rate.Limiter,
	url string,
	headers map[string]string,
	body any,
	out any,
) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w: %w", apperrors.ErrProviderUnavailable, err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w: %w", apperrors.ErrProviderUnavailable, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body) //nolint:errcheck
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w: %w", apperrors.ErrProviderUnavailable, err)
	}

	return nil
}

// returns a client with the given timeout sharing the default transport settings
func httpClientWithTimeout(timeout time.Duration) *http.Client {
	if timeout <= 0 || timeout == providerHTTPClient.Timeout {
		return providerHTTPClient
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: providerHTTPClient.Transport,
	}
}
