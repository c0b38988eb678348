package llm

import (
	"context"
	"errors"
	"sync"

	"codeberg.org/askrouter/server/internal/logger"
)

// retries once with the fallback model when the primary model does not exist
// once the fallback has been used it stays selected
type fallbackEmbedder struct {
	primary  Embedder
	fallback Embedder

	mu       sync.RWMutex
	switched bool
}

// wraps primary so that ErrModelNotFound triggers a single retry on fallback
func WithModelFallback(primary, fallback Embedder) Embedder {
	if fallback == nil {
		return primary
	}

	return &fallbackEmbedder{primary: primary, fallback: fallback}
}

func (f *fallbackEmbedder) active() Embedder {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.switched {
		return f.fallback
	}

	return f.primary
}

func (f *fallbackEmbedder) Model() string {
	return f.active().Model()
}

func (f *fallbackEmbedder) Dimension() int {
	return f.active().Dimension()
}

func (f *fallbackEmbedder) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	current := f.active()

	vector, err := current.Embed(ctx, text, mode)
	if err == nil || current == f.fallback || !errors.Is(err, ErrModelNotFound) {
		return vector, err
	}

	logger.Warn("embedding model not found, switching to fallback",
		"model", f.primary.Model(),
		"fallback", f.fallback.Model(),
	)

	f.mu.Lock()
	f.switched = true
	f.mu.Unlock()

	return f.fallback.Embed(ctx, text, mode)
}
