package rag

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/askrouter/server/internal/chunker"
	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/storage"
)

const testDim = 32

// bag-of-words hashing embedder: identical text gives identical vectors
type wordEmbedder struct {
	mu    sync.Mutex
	err   error
	calls map[llm.EmbedMode]int
}

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{calls: map[llm.EmbedMode]int{}}
}

func (w *wordEmbedder) Embed(_ context.Context, text string, mode llm.EmbedMode) ([]float32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls[mode]++

	if w.err != nil {
		return nil, w.err
	}

	vec := make([]float32, testDim)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%testDim]++
	}

	return vec, nil
}

func (w *wordEmbedder) Dimension() int { return testDim }
func (w *wordEmbedder) Model() string  { return "words" }

// implements llm.TextGenerator; refuses when the prompt carries no context
type fakeGenerator struct {
	err        error
	lastPrompt string
	calls      int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (*llm.Generation, error) {
	g.calls++
	g.lastPrompt = prompt

	if g.err != nil {
		return nil, g.err
	}

	if strings.Contains(prompt, "Context:\n\n") {
		return &llm.Generation{Text: RefusalText, Tokens: 20}, nil
	}

	return &llm.Generation{Text: "grounded answer", Tokens: 100}, nil
}

func (g *fakeGenerator) Model() string { return "fake" }

// reverses candidate order
type reverseReranker struct {
	err    error
	calls  int
	offset int // added to every returned index
}

func (r *reverseReranker) Enabled() bool { return true }

func (r *reverseReranker) Rerank(_ context.Context, _ string, docs []string, topN int) ([]llm.RerankResult, error) {
	r.calls++

	if r.err != nil {
		return nil, r.err
	}

	results := []llm.RerankResult{}
	for i := len(docs) - 1; i >= 0 && len(results) < topN; i-- {
		results = append(results, llm.RerankResult{Index: i + r.offset, Score: float64(i) / 10})
	}

	return results, nil
}

type failingIndex struct {
	storage.VectorIndex
}

func (failingIndex) Query(context.Context, []float32, int) ([]storage.Match, error) {
	return nil, apperrors.ErrStore
}

func newTestPipeline(t *testing.T, reranker llm.Reranker, gen llm.TextGenerator, opts ...Option) (*Pipeline, *wordEmbedder, *storage.MemoryDocuments, *storage.MemoryIndex) {
	t.Helper()

	seg, err := chunker.New(chunker.Options{Size: 200, Overlap: 20})
	require.NoError(t, err)

	embedder := newWordEmbedder()
	index := storage.NewMemoryIndex(testDim)
	docs := storage.NewMemoryDocuments(index)

	return New(seg, embedder, reranker, gen, docs, index, opts...), embedder, docs, index
}

func TestIngest_StoresDocumentAndChunks(t *testing.T) {
	ctx := context.Background()
	p, embedder, docs, index := newTestPipeline(t, nil, &fakeGenerator{})

	text := strings.Repeat("Refunds are processed within five business days of approval. ", 10)

	docID, err := p.Ingest(ctx, text, Metadata{Source: "upload", Title: "Refunds"})
	require.NoError(t, err)
	require.NotEmpty(t, docID)

	doc, err := docs.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, text, doc.Text)
	assert.Equal(t, "upload", doc.Source)
	assert.Equal(t, "Refunds", doc.Title)
	assert.Greater(t, doc.ChunkCount, 1)

	assert.Equal(t, doc.ChunkCount, index.Len())
	assert.Equal(t, doc.ChunkCount, embedder.calls[llm.ModeDocument])
}

func TestIngest_Defaults(t *testing.T) {
	ctx := context.Background()
	p, _, docs, _ := newTestPipeline(t, nil, &fakeGenerator{})

	short := "A short note."
	docID, err := p.Ingest(ctx, short, Metadata{})
	require.NoError(t, err)

	doc, err := docs.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "paste", doc.Source)
	assert.Equal(t, short, doc.Title)

	long := strings.Repeat("x", 60)
	docID, err = p.Ingest(ctx, long, Metadata{})
	require.NoError(t, err)

	doc, err = docs.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 50)+"...", doc.Title)
}

func TestIngest_EmptyTextIsValidationError(t *testing.T) {
	p, embedder, _, index := newTestPipeline(t, nil, &fakeGenerator{})

	_, err := p.Ingest(context.Background(), "   \n", Metadata{})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, embedder.calls[llm.ModeDocument])
	assert.Zero(t, index.Len())
}

func TestIngest_EmbeddingFailureIsReturned(t *testing.T) {
	p, embedder, _, index := newTestPipeline(t, nil, &fakeGenerator{})
	embedder.err = apperrors.ErrProviderUnavailable

	_, err := p.Ingest(context.Background(), "some text", Metadata{})
	require.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	assert.Zero(t, index.Len())
}

func TestIngestThenAnswer_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	p, _, _, _ := newTestPipeline(t, nil, gen)

	_, err := p.Ingest(ctx, "Our office cafeteria serves vegetarian lasagna every Thursday.", Metadata{Title: "Menu"})
	require.NoError(t, err)

	target := "The warranty covers manufacturing defects for two years."
	docID, err := p.Ingest(ctx, target, Metadata{Title: "Warranty"})
	require.NoError(t, err)

	result := p.Answer(ctx, target)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, docID, result.Sources[0].DocID)
	assert.Equal(t, target, result.Sources[0].Text)
	assert.InDelta(t, 1.0, result.Sources[0].Score, 1e-9)

	assert.Equal(t, "grounded answer", result.Answer)
	assert.Equal(t, 100, result.Metrics.Tokens)
	assert.InDelta(t, 100*DefaultCostPerToken, result.Metrics.CostEstimate, 1e-6)
	assert.Contains(t, gen.lastPrompt, "Source [1] (From: Warranty):\n"+target)
	assert.Contains(t, gen.lastPrompt, RefusalText)
}

func TestAnswer_EmptyIndexRefuses(t *testing.T) {
	gen := &fakeGenerator{}
	reranker := &reverseReranker{}
	p, _, _, _ := newTestPipeline(t, reranker, gen)

	result := p.Answer(context.Background(), "what is the meaning of life")
	assert.Equal(t, RefusalText, result.Answer)
	assert.Empty(t, result.Sources)
	assert.NotNil(t, result.Sources)
	assert.Equal(t, 1, gen.calls)
	assert.Zero(t, reranker.calls)
}

func TestAnswer_GenerationErrorBecomesAnswer(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	p, _, _, _ := newTestPipeline(t, nil, gen)

	result := p.Answer(context.Background(), "anything")
	assert.Equal(t, "Error generating answer: quota exceeded", result.Answer)
	assert.Zero(t, result.Metrics.Tokens)
	assert.Zero(t, result.Metrics.CostEstimate)
}

func TestAnswer_QueryEmbeddingFailureStillGenerates(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	p, embedder, _, _ := newTestPipeline(t, nil, gen)

	_, err := p.Ingest(ctx, "some indexed text", Metadata{})
	require.NoError(t, err)

	embedder.err = apperrors.ErrProviderUnavailable

	result := p.Answer(ctx, "some indexed text")
	assert.Empty(t, result.Sources)
	assert.Equal(t, RefusalText, result.Answer)
	assert.Equal(t, 1, gen.calls)
}

func TestAnswer_IndexFailureStillGenerates(t *testing.T) {
	seg, err := chunker.New(chunker.DefaultOptions())
	require.NoError(t, err)

	gen := &fakeGenerator{}
	p := New(seg, newWordEmbedder(), nil, gen, storage.NewMemoryDocuments(nil), failingIndex{})

	result := p.Answer(context.Background(), "q")
	assert.Empty(t, result.Sources)
	assert.Equal(t, RefusalText, result.Answer)
}

func ingestMany(t *testing.T, p *Pipeline, n int) {
	t.Helper()

	for i := range n {
		_, err := p.Ingest(context.Background(), strings.Repeat("policy ", i+1)+"details", Metadata{})
		require.NoError(t, err)
	}
}

func TestAnswer_RerankerOrdersAndTruncates(t *testing.T) {
	reranker := &reverseReranker{}
	p, _, _, _ := newTestPipeline(t, reranker, &fakeGenerator{}, WithTopK(6), WithTopN(3))
	ingestMany(t, p, 8)

	result := p.Answer(context.Background(), "policy details")
	require.Len(t, result.Sources, 3)
	assert.Equal(t, 1, reranker.calls)

	for _, src := range result.Sources {
		require.NotNil(t, src.RerankScore)
	}

	assert.Greater(t, *result.Sources[0].RerankScore, *result.Sources[2].RerankScore)
}

func TestAnswer_RerankerFailureFallsBackToVectorOrder(t *testing.T) {
	reranker := &reverseReranker{err: apperrors.ErrProviderUnavailable}
	p, _, _, _ := newTestPipeline(t, reranker, &fakeGenerator{}, WithTopK(6), WithTopN(3))
	ingestMany(t, p, 8)

	result := p.Answer(context.Background(), "policy details")
	require.Len(t, result.Sources, 3)

	for i, src := range result.Sources {
		assert.Nil(t, src.RerankScore)

		if i > 0 {
			assert.GreaterOrEqual(t, result.Sources[i-1].Score, src.Score)
		}
	}
}

func TestAnswer_RerankerUnknownIndicesFallBackToVectorOrder(t *testing.T) {
	reranker := &reverseReranker{offset: 100}
	p, _, _, _ := newTestPipeline(t, reranker, &fakeGenerator{}, WithTopK(6), WithTopN(3))
	ingestMany(t, p, 8)

	result := p.Answer(context.Background(), "policy details")
	assert.Equal(t, 1, reranker.calls)
	require.Len(t, result.Sources, 3)

	for i, src := range result.Sources {
		assert.Nil(t, src.RerankScore)

		if i > 0 {
			assert.GreaterOrEqual(t, result.Sources[i-1].Score, src.Score)
		}
	}
}

func TestAnswer_UnconfiguredRerankerFallsBack(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, llm.NoopReranker{}, &fakeGenerator{}, WithTopK(6), WithTopN(2))
	ingestMany(t, p, 4)

	result := p.Answer(context.Background(), "policy details")
	assert.Len(t, result.Sources, 2)
	assert.NotEqual(t, RefusalText, result.Answer)
}

func TestAnswer_ElapsedUsesClock(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := 0

	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * 1234 * time.Millisecond)
	}

	p, _, _, _ := newTestPipeline(t, nil, &fakeGenerator{}, WithClock(clock))

	result := p.Answer(context.Background(), "q")
	assert.InDelta(t, 1.234, result.Metrics.ElapsedSeconds, 1e-9)
}

func TestBuildContext(t *testing.T) {
	got := buildContext([]Source{
		{Title: "A", Text: "alpha"},
		{Text: "beta"},
	})

	assert.Equal(t, "Source [1] (From: A):\nalpha\n\nSource [2] (From: Document):\nbeta", got)
	assert.Empty(t, buildContext(nil))
}

func TestNew_TopNCappedByTopK(t *testing.T) {
	p := New(nil, nil, nil, nil, nil, nil, WithTopK(3), WithTopN(8))
	assert.Equal(t, 3, p.topN)
}
