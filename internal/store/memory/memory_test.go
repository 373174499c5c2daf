package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragkb/internal/domain"
)

func TestCategoryUniqueName(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveCategory(ctx, &domain.Category{Name: "Fizika"}))
	err := s.SaveCategory(ctx, &domain.Category{Name: "Fizika"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategorySlugGenerated(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := &domain.Category{Name: "Magyar Irodalom"}
	require.NoError(t, s.SaveCategory(ctx, c))
	assert.Equal(t, "magyar-irodalom", c.Slug)
}

func TestDeleteCategoryNullsDocumentRef(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := &domain.Category{Name: "Fizika"}
	require.NoError(t, s.SaveCategory(ctx, c))
	d := &domain.Document{Title: "Gravitáció", Content: "x", CategoryID: c.ID, Active: true}
	require.NoError(t, s.SaveDocument(ctx, d))

	require.NoError(t, s.DeleteCategory(ctx, c.ID))

	got, err := s.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestDocumentSlugCollisionGetsCounter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := &domain.Document{Title: "Newton törvényei", Content: "a"}
	b := &domain.Document{Title: "Newton törvényei", Content: "b"}
	require.NoError(t, s.SaveDocument(ctx, a))
	require.NoError(t, s.SaveDocument(ctx, b))
	assert.Equal(t, "newton-torvenyei", a.Slug)
	assert.Equal(t, "newton-torvenyei-001", b.Slug)
}

func TestDocumentExplicitDuplicateSlugRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{Title: "A", Content: "a", Slug: "same"}))
	err := s.SaveDocument(ctx, &domain.Document{Title: "B", Content: "b", Slug: "same"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestDocumentUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := &domain.Document{Title: "A", Content: "first"}
	require.NoError(t, s.SaveDocument(ctx, d))
	created := d.CreatedAt

	d.Content = "second"
	require.NoError(t, s.SaveDocument(ctx, d))
	got, err := s.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "second", got.Content)
}

func TestReplaceChunksDropsOldEmbeddings(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := &domain.Document{Title: "A", Content: "x"}
	require.NoError(t, s.SaveDocument(ctx, d))

	require.NoError(t, s.ReplaceChunks(ctx, d.ID, []domain.Chunk{{Index: 0, Text: "régi"}}))
	old, err := s.ListChunks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, old, 1)
	require.NoError(t, s.SaveEmbedding(ctx, &domain.Embedding{ChunkID: old[0].ID, Vector: []float64{1}}))
	require.NoError(t, s.MarkChunkEmbedded(ctx, old[0].ID))

	require.NoError(t, s.ReplaceChunks(ctx, d.ID, []domain.Chunk{
		{Index: 0, Text: "új egy"},
		{Index: 1, Text: "új kettő"},
	}))
	chs, err := s.ListChunks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, chs, 2)
	for _, ch := range chs {
		assert.False(t, ch.Embedded)
	}
	embedded, err := s.ListEmbeddedChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, embedded)
}

func TestReplaceChunksDuplicateIndexRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := &domain.Document{Title: "A", Content: "x"}
	require.NoError(t, s.SaveDocument(ctx, d))
	err := s.ReplaceChunks(ctx, d.ID, []domain.Chunk{{Index: 0, Text: "a"}, {Index: 0, Text: "b"}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSecondEmbeddingForChunkRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := &domain.Document{Title: "A", Content: "x"}
	require.NoError(t, s.SaveDocument(ctx, d))
	require.NoError(t, s.ReplaceChunks(ctx, d.ID, []domain.Chunk{{Index: 0, Text: "t"}}))
	chs, err := s.ListChunks(ctx, d.ID)
	require.NoError(t, err)
	require.NoError(t, s.SaveEmbedding(ctx, &domain.Embedding{ChunkID: chs[0].ID, Vector: []float64{1}}))
	err = s.SaveEmbedding(ctx, &domain.Embedding{ChunkID: chs[0].ID, Vector: []float64{2}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPendingChunksAndMarkEmbedded(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := &domain.Document{Title: "A", Content: "x"}
	require.NoError(t, s.SaveDocument(ctx, d))
	require.NoError(t, s.ReplaceChunks(ctx, d.ID, []domain.Chunk{
		{Index: 0, Text: "a"}, {Index: 1, Text: "b"},
	}))
	chs, err := s.ListChunks(ctx, d.ID)
	require.NoError(t, err)

	require.NoError(t, s.MarkChunkEmbedded(ctx, chs[0].ID))
	pending, err := s.ListPendingChunks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, chs[1].ID, pending[0].ID)
}

func TestFilterDocumentsMatchesChunkText(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := &domain.Document{Title: "Első", Content: "tartalom"}
	b := &domain.Document{Title: "Második", Content: "más"}
	require.NoError(t, s.SaveDocument(ctx, a))
	require.NoError(t, s.SaveDocument(ctx, b))
	require.NoError(t, s.ReplaceChunks(ctx, b.ID, []domain.Chunk{{Index: 0, Text: "kulcsszó a szövegben"}}))

	got, err := s.FilterDocuments(ctx, "KULCSSZÓ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestListEmbeddedChunksByCategory(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := &domain.Category{Name: "Fizika"}
	require.NoError(t, s.SaveCategory(ctx, c))

	in := &domain.Document{Title: "A", Content: "x", CategoryID: c.ID}
	out := &domain.Document{Title: "B", Content: "y"}
	require.NoError(t, s.SaveDocument(ctx, in))
	require.NoError(t, s.SaveDocument(ctx, out))
	for _, d := range []*domain.Document{in, out} {
		require.NoError(t, s.ReplaceChunks(ctx, d.ID, []domain.Chunk{{Index: 0, Text: "t"}}))
		chs, err := s.ListChunks(ctx, d.ID)
		require.NoError(t, err)
		require.NoError(t, s.SaveEmbedding(ctx, &domain.Embedding{ChunkID: chs[0].ID, Vector: []float64{1, 0}}))
		require.NoError(t, s.MarkChunkEmbedded(ctx, chs[0].ID))
	}

	all, err := s.ListEmbeddedChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := s.ListEmbeddedChunksByCategory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, in.ID, filtered[0].Chunk.DocumentID)

	none, err := s.ListEmbeddedChunksByCategory(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, none)
}
