package search

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"ragkb/internal/domain"
)

// lexicalTopN caps the number of classic-search hits returned.
const lexicalTopN = 5

// Scorer implements the "classic search": additive case-insensitive
// substring scoring over title, content, anonymized content and chunk text.
// It is a deliberate heuristic complementing the similarity engine, not a
// ranking model.
type Scorer struct {
	store domain.Store
}

func NewScorer(store domain.Store) *Scorer {
	return &Scorer{store: store}
}

// Search returns the top five matching documents, score descending, ties
// keeping the store's iteration order. Weights: +5 title hit, +3 content,
// +2 anonymized content (when present), +1 per occurrence across chunk
// text, plus a length-decay bonus favoring shorter documents.
func (s *Scorer) Search(ctx context.Context, query string) ([]domain.DocumentScore, error) {
	docs, err := s.store.FilterDocuments(ctx, query)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)

	scored := make([]domain.DocumentScore, 0, len(docs))
	for _, d := range docs {
		score := 0.0
		if strings.Contains(strings.ToLower(d.Title), q) {
			score += 5
		}
		if strings.Contains(strings.ToLower(d.Content), q) {
			score += 3
		}
		if d.AnonymizedContent != "" && strings.Contains(strings.ToLower(d.AnonymizedContent), q) {
			score += 2
		}
		chunks, err := s.store.ListChunks(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		score += float64(strings.Count(strings.ToLower(strings.Join(texts, " ")), q))
		if contentLen := utf8.RuneCountInString(d.Content); contentLen > 0 {
			score += math.Max(0, 2-float64(contentLen)/1000)
		}
		scored = append(scored, domain.DocumentScore{Document: d, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > lexicalTopN {
		scored = scored[:lexicalTopN]
	}
	return scored, nil
}
