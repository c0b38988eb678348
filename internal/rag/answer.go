package rag

import (
	"context"
	"math"

	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/storage"
)

// retrieves, reranks and generates a grounded answer
// never fails: retrieval problems yield an empty context, generation problems an error answer
func (p *Pipeline) Answer(ctx context.Context, query string) *GroundedResult {
	start := p.now()

	candidates := p.retrieve(ctx, query)
	sources := p.rerank(ctx, query, candidates)

	prompt := buildPrompt(query, buildContext(sources))

	answer, tokens := "", 0

	generation, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed", "query", query, "error", err)
		answer = "Error generating answer: " + err.Error()
	} else {
		answer, tokens = generation.Text, generation.Tokens
	}

	return &GroundedResult{
		Answer:  answer,
		Sources: sources,
		Metrics: Metrics{
			ElapsedSeconds: round(p.now().Sub(start).Seconds(), 3),
			Tokens:         tokens,
			CostEstimate:   round(float64(tokens)*p.costPerToken, 6),
		},
	}
}

// top-K chunks by vector similarity; empty on any failure
func (p *Pipeline) retrieve(ctx context.Context, query string) []Source {
	vector, err := p.embedder.Embed(ctx, query, llm.ModeQuery)
	if err != nil {
		logger.Warn("query embedding failed, answering without context", "error", err)
		return []Source{}
	}

	matches, err := p.index.Query(ctx, vector, p.topK)
	if err != nil {
		logger.Warn("vector query failed, answering without context", "error", err)
		return []Source{}
	}

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, fromMatch(m))
	}

	return sources
}

// top-N by reranker score, or by vector order when the reranker is unavailable
func (p *Pipeline) rerank(ctx context.Context, query string, candidates []Source) []Source {
	if len(candidates) == 0 {
		return []Source{}
	}

	if !p.reranker.Enabled() {
		logger.Debug("reranker not configured, keeping vector order")
		return truncate(candidates, p.topN)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	results, err := p.reranker.Rerank(ctx, query, texts, p.topN)
	if err != nil {
		logger.Warn("rerank failed, keeping vector order", "error", err)
		return truncate(candidates, p.topN)
	}

	if len(results) == 0 {
		logger.Warn("reranker returned no results, keeping vector order")
		return truncate(candidates, p.topN)
	}

	ranked := make([]Source, 0, len(results))

	for _, r := range results {
		if r.Index < 0 || r.Index >= len(candidates) {
			continue
		}

		src := candidates[r.Index]
		score := r.Score
		src.RerankScore = &score
		ranked = append(ranked, src)

		if len(ranked) == p.topN {
			break
		}
	}

	if len(ranked) == 0 {
		logger.Warn("reranker returned only unknown indices, keeping vector order", "results", len(results))
		return truncate(candidates, p.topN)
	}

	return ranked
}

func fromMatch(m storage.Match) Source {
	return Source{
		Text:       m.Metadata.Text,
		DocID:      m.Metadata.DocID,
		ChunkIndex: m.Metadata.ChunkIndex,
		Source:     m.Metadata.Source,
		Title:      m.Metadata.Title,
		Score:      m.Score,
	}
}

func truncate(sources []Source, n int) []Source {
	if len(sources) > n {
		return sources[:n]
	}

	return sources
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
