package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragkb/internal/domain"
	"ragkb/internal/store/memory"
)

type fakeEmbedder struct {
	vec   []float64
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) []float64 {
	f.calls++
	return f.vec
}

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func seedEmbeddedDoc(t *testing.T, s domain.Store, title, categoryID string, vectors ...[]float64) *domain.Document {
	t.Helper()
	ctx := context.Background()
	d := &domain.Document{Title: title, Content: "tartalom", CategoryID: categoryID}
	require.NoError(t, s.SaveDocument(ctx, d))
	chunks := make([]domain.Chunk, len(vectors))
	for i := range vectors {
		chunks[i] = domain.Chunk{Index: i, Text: title + " darab"}
	}
	require.NoError(t, s.ReplaceChunks(ctx, d.ID, chunks))
	saved, err := s.ListChunks(ctx, d.ID)
	require.NoError(t, err)
	for i, ch := range saved {
		require.NoError(t, s.SaveEmbedding(ctx, &domain.Embedding{ChunkID: ch.ID, Vector: vectors[i]}))
		require.NoError(t, s.MarkChunkEmbedded(ctx, ch.ID))
	}
	return d
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-3, 0}), 1e-9)

	// Malformed or degenerate pairs score zero instead of failing.
	assert.Zero(t, Cosine([]float64{1, 0}, []float64{1}))
	assert.Zero(t, Cosine(nil, []float64{1}))
	assert.Zero(t, Cosine([]float64{0, 0}, []float64{1, 0}))
}

func TestSearchRanksByDescendingSimilarity(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "Gravitáció", "", []float64{0, 1}, []float64{1, 0.1}, []float64{1, 1})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "gravitáció", 5, DefaultThreshold, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.InDelta(t, 0.0, got[2].Score, 1e-9)
}

func TestSearchCapsAtTopK(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "A", "", []float64{1, 0}, []float64{1, 0}, []float64{1, 0}, []float64{1, 0})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "q", 2, DefaultThreshold, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Non-positive topK falls back to the default.
	got, err = e.Search(ctx, "q", 0, DefaultThreshold, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSearchThresholdDoesNotFilter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "A", "", []float64{0, 1})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "q", 5, 0.99, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Less(t, got[0].Score, 0.99)
}

func TestSearchStableOnTies(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "Első", "", []float64{1, 0})
	seedEmbeddedDoc(t, s, "Második", "", []float64{2, 0})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "q", 5, DefaultThreshold, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Equal scores keep insertion order.
	assert.Equal(t, "Első darab", got[0].Chunk.Text)
	assert.Equal(t, "Második darab", got[1].Chunk.Text)
}

func TestSearchCategoryFilter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := &domain.Category{Name: "Fizika"}
	require.NoError(t, s.SaveCategory(ctx, c))
	in := seedEmbeddedDoc(t, s, "Bent", c.ID, []float64{1, 0})
	seedEmbeddedDoc(t, s, "Kint", "", []float64{1, 0})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "q", 5, DefaultThreshold, "Fizika")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.ID, got[0].Chunk.DocumentID)
}

func TestSearchUnknownCategoryYieldsNoResults(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "A", "", []float64{1, 0})

	e := NewEngine(s, &fakeEmbedder{vec: []float64{1, 0}}, nil)
	got, err := e.Search(ctx, "q", 5, DefaultThreshold, "Nincs ilyen")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchFailedQueryEmbeddingIsSoft(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedEmbeddedDoc(t, s, "A", "", []float64{1, 0})

	e := NewEngine(s, &fakeEmbedder{vec: nil}, nil)
	got, err := e.Search(ctx, "q", 5, DefaultThreshold, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
