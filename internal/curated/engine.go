package curated

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"codeberg.org/askrouter/server/internal/embedcache"
	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/logger"
)

const (
	DefaultThreshold   = 0.70
	DefaultConcurrency = 4
)

type Option func(*Engine)

// minimum cosine score for a semantic match (inclusive)
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// bounds concurrent embedding calls during Initialize
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// clock used to resolve deferred answers
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// one immutable generation of curated state
type state struct {
	entries  []Entry
	exact    *ExactIndex
	semantic *SemanticIndex
	stats    Stats
}

// answers queries from the curated set, exact phrasing first, then by embedding similarity
type Engine struct {
	source   Source
	embedder llm.Embedder
	cache    embedcache.Store

	threshold   float64
	concurrency int
	now         func() time.Time

	// serializes Initialize calls
	initMu sync.Mutex

	mu    sync.RWMutex
	state *state
}

// cache may be nil (every entry is embedded on each Initialize)
// embedder may be nil (exact matching only)
func New(source Source, embedder llm.Embedder, cache embedcache.Store, opts ...Option) *Engine {
	e := &Engine{
		source:      source,
		embedder:    embedder,
		cache:       cache,
		threshold:   DefaultThreshold,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		state: &state{
			exact:    BuildExactIndex(nil),
			semantic: &SemanticIndex{},
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// loads the curated set and rebuilds both indexes, replacing all prior state
// only entries whose question text changed since the last run reach the provider
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	entries, err := e.source.Load()
	if err != nil {
		if !errors.Is(err, apperrors.ErrData) {
			return fmt.Errorf("failed to load curated entries: %w", err)
		}

		logger.ErrorErr(err, "curated source is malformed, continuing with no entries")
		entries = nil
	}

	next := &state{
		entries:  entries,
		exact:    BuildExactIndex(entries),
		semantic: &SemanticIndex{},
	}

	stats := Stats{
		Entries:   len(entries),
		ExactKeys: next.exact.Len(),
		LoadedAt:  e.now(),
	}

	if e.embedder != nil && len(entries) > 0 {
		vectors, hits, calls, err := e.reconcile(ctx, next.entries)
		if err != nil {
			return err
		}

		for i, vector := range vectors {
			if vector == nil {
				stats.Skipped++
				continue
			}

			next.semantic.add(vector, &next.entries[i])
		}

		stats.CacheHits = hits
		stats.ProviderCalls = calls
	}

	stats.Vectors = next.semantic.Len()
	next.stats = stats

	e.mu.Lock()
	e.state = next
	e.mu.Unlock()

	logger.Info("curated engine initialized",
		"entries", stats.Entries,
		"exact_keys", stats.ExactKeys,
		"vectors", stats.Vectors,
		"cache_hits", stats.CacheHits,
		"provider_calls", stats.ProviderCalls,
		"skipped", stats.Skipped,
	)

	return nil
}

// returns one vector per entry (nil where the entry was skipped), in entry order
func (e *Engine) reconcile(ctx context.Context, entries []Entry) ([][]float32, int, int, error) {
	pool, err := ants.NewPool(e.concurrency)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create embedding pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		hits    atomic.Int64
		calls   atomic.Int64
		vectors = make([][]float32, len(entries))
	)

	for i := range entries {
		entry := &entries[i]

		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()

			vector, hit, err := e.vectorFor(ctx, entry)
			if hit {
				hits.Add(1)
			} else {
				calls.Add(1)
			}

			if err != nil {
				logger.Warn("skipping curated entry, embedding failed",
					"entry_id", entry.ID,
					"error", err,
				)

				return
			}

			vectors[i] = vector
		})

		if submitErr != nil {
			wg.Done()
			logger.Warn("skipping curated entry, pool rejected task", "entry_id", entry.ID, "error", submitErr)
		}
	}

	wg.Wait()

	return vectors, int(hits.Load()), int(calls.Load()), nil
}

// reuses the cached vector for (id, hash) or embeds and stores a fresh one
func (e *Engine) vectorFor(ctx context.Context, entry *Entry) ([]float32, bool, error) {
	hash := embedcache.ContentHash(entry.Question)

	if e.cache != nil {
		record, err := e.cache.Get(ctx, entry.ID, hash)

		switch {
		case err == nil && record.Model != e.embedder.Model():
			logger.Warn("cached embedding came from another model, re-embedding",
				"entry_id", entry.ID,
				"cached_model", record.Model,
				"model", e.embedder.Model(),
			)
		case err == nil && len(record.Vector) == e.embedder.Dimension():
			return record.Vector, true, nil
		case err == nil:
			logger.Warn("cached embedding has wrong dimension, re-embedding",
				"entry_id", entry.ID,
				"cached", len(record.Vector),
				"expected", e.embedder.Dimension(),
			)
		case !errors.Is(err, embedcache.ErrNotFound):
			logger.Warn("embedding cache lookup failed, treating as miss", "entry_id", entry.ID, "error", err)
		}
	}

	vector, err := e.embedder.Embed(ctx, entry.Question, llm.ModeDocument)
	if err != nil {
		return nil, false, err
	}

	// Model is read after Embed so a fallback switch is recorded
	if e.cache != nil {
		err := e.cache.Put(ctx, embedcache.Record{
			EntryID:     entry.ID,
			ContentHash: hash,
			Model:       e.embedder.Model(),
			Vector:      vector,
			SourceText:  entry.Question,
			UpdatedAt:   e.now(),
		})
		if err != nil {
			logger.Warn("failed to cache curated embedding", "entry_id", entry.ID, "error", err)
		}
	}

	return vector, false, nil
}

func (e *Engine) snapshot() *state {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state
}

// finds a curated answer for the query
// false means no match; provider failures on the semantic path also report no match
func (e *Engine) Resolve(ctx context.Context, query string) (*Match, bool) {
	st := e.snapshot()

	normalized := Normalize(query)
	if normalized == "" {
		return nil, false
	}

	if entry, ok := st.exact.Lookup(normalized); ok {
		logger.Debug("curated exact hit", "entry_id", entry.ID, "query", query)

		return &Match{
			Entry:  entry,
			Answer: entry.Answer.Resolve(e.now()),
			Method: MethodExact,
		}, true
	}

	if e.embedder == nil || st.semantic.Len() == 0 {
		return nil, false
	}

	vector, err := e.embedder.Embed(ctx, normalized, llm.ModeQuery)
	if err != nil {
		logger.Warn("curated semantic check failed", "query", query, "error", err)
		return nil, false
	}

	entry, score, ok := st.semantic.Best(vector)
	if !ok {
		return nil, false
	}

	logger.Debug("curated best score", "query", query, "entry_id", entry.ID, "score", score)

	if score < e.threshold {
		return nil, false
	}

	confidence := math.Round(score*10000) / 10000

	return &Match{
		Entry:      entry,
		Answer:     entry.Answer.Resolve(e.now()),
		Method:     MethodSemantic,
		Confidence: &confidence,
	}, true
}

// counters from the most recent Initialize
func (e *Engine) Stats() Stats {
	return e.snapshot().stats
}
