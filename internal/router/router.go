package router

import (
	"context"

	"codeberg.org/askrouter/server/internal/curated"
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/rag"
)

type AnswerSource string

const (
	SourceFAQExact    AnswerSource = "faq_exact"
	SourceFAQSemantic AnswerSource = "faq_semantic"
	SourceRAG         AnswerSource = "rag"
)

// *curated.Engine implements it
type Resolver interface {
	Resolve(ctx context.Context, query string) (*curated.Match, bool)
}

// *rag.Pipeline implements it
type Answerer interface {
	Answer(ctx context.Context, query string) *rag.GroundedResult
}

type Result struct {
	Answer           string       `json:"answer"`
	Source           AnswerSource `json:"source"`
	Confidence       *float64     `json:"confidence,omitempty"`
	MatchedQuestion  string       `json:"original_question,omitempty"`
	RelatedQuestions []string     `json:"questions_related,omitempty"`
	Sources          []rag.Source `json:"sources,omitempty"`
	Metrics          *rag.Metrics `json:"metrics,omitempty"`
}

// tries the curated set first and falls through to the pipeline
// holds no state of its own
type Router struct {
	curated  Resolver
	pipeline Answerer
}

func New(curated Resolver, pipeline Answerer) *Router {
	return &Router{
		curated:  curated,
		pipeline: pipeline,
	}
}

func (r *Router) Route(ctx context.Context, query string) *Result {
	if match, ok := r.curated.Resolve(ctx, query); ok {
		return fromMatch(match)
	}

	logger.Debug("no curated match, running pipeline", "query", query)

	grounded := r.pipeline.Answer(ctx, query)
	metrics := grounded.Metrics

	return &Result{
		Answer:  grounded.Answer,
		Source:  SourceRAG,
		Sources: grounded.Sources,
		Metrics: &metrics,
	}
}

func fromMatch(match *curated.Match) *Result {
	if match.Method == curated.MethodExact {
		return &Result{
			Answer:           match.Answer,
			Source:           SourceFAQExact,
			RelatedQuestions: match.Entry.Variations,
		}
	}

	return &Result{
		Answer:          match.Answer,
		Source:          SourceFAQSemantic,
		Confidence:      match.Confidence,
		MatchedQuestion: match.Entry.Question,
	}
}
