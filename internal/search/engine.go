package search

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"ragkb/internal/domain"
)

// Default retrieval parameters.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.35
)

// Engine ranks stored chunk embeddings against a query by cosine similarity
// using a full scan over the candidate set. No approximate index is involved.
type Engine struct {
	store    domain.Store
	embedder domain.Embedder
	logger   *zap.Logger
}

func NewEngine(store domain.Store, embedder domain.Embedder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, embedder: embedder, logger: logger}
}

// Search returns up to topK chunks ordered by descending similarity, ties
// keeping retrieval order. A failed query embedding yields an empty result,
// not an error. When category names a category that does not exist the
// candidate set is empty; there is no fallback to the full set.
//
// threshold is part of the search contract but intentionally does not filter
// the returned set; callers annotate scores against it downstream.
func (e *Engine) Search(ctx context.Context, query string, topK int, threshold float64, category string) ([]domain.SearchResult, error) {
	_ = threshold
	if topK <= 0 {
		topK = DefaultTopK
	}
	if e.embedder == nil {
		e.logger.Warn("no embedder configured, returning no results")
		return nil, nil
	}

	vec := e.embedder.Embed(ctx, query)
	if vec == nil {
		e.logger.Warn("query embedding failed, returning no results", zap.String("query", query))
		return nil, nil
	}

	var (
		candidates []domain.EmbeddedChunk
		err        error
	)
	if category != "" {
		cat, catErr := e.store.GetCategoryByName(ctx, category)
		if errors.Is(catErr, domain.ErrNotFound) {
			e.logger.Debug("category filter matched no category", zap.String("category", category))
			return nil, nil
		}
		if catErr != nil {
			return nil, catErr
		}
		candidates, err = e.store.ListEmbeddedChunksByCategory(ctx, cat.ID)
	} else {
		candidates, err = e.store.ListEmbeddedChunks(ctx)
	}
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.SearchResult{Chunk: c.Chunk, Score: Cosine(vec, c.Vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Cosine returns dot(a,b) / (‖a‖·‖b‖). Zero-norm or malformed vector pairs
// score 0.0 instead of failing.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
