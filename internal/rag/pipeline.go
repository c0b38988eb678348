package rag

import (
	"time"

	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/storage"
)

type Option func(*Pipeline)

// number of candidates pulled from the vector index
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// number of chunks kept after reranking
func WithTopN(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.topN = n
		}
	}
}

func WithCostPerToken(cost float64) Option {
	return func(p *Pipeline) {
		if cost >= 0 {
			p.costPerToken = cost
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// reranker may be nil, which behaves like an unconfigured provider
func New(
	segmenter Segmenter,
	embedder llm.Embedder,
	reranker llm.Reranker,
	generator llm.TextGenerator,
	docs storage.DocumentStore,
	index storage.VectorIndex,
	opts ...Option,
) *Pipeline {
	if reranker == nil {
		reranker = llm.NoopReranker{}
	}

	p := &Pipeline{
		segmenter:    segmenter,
		embedder:     embedder,
		reranker:     reranker,
		generator:    generator,
		docs:         docs,
		index:        index,
		topK:         DefaultTopK,
		topN:         DefaultTopN,
		costPerToken: DefaultCostPerToken,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.topN > p.topK {
		p.topN = p.topK
	}

	return p
}
