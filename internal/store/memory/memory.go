// Package memory provides the in-memory store backend, used as the default
// backend and by tests. All operations are mutex-guarded; iteration order is
// insertion order so tie-breaking stays stable across calls.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ragkb/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	documents  map[string]*domain.Document
	chunks     map[string][]domain.Chunk    // by document ID, ordered by index
	embeddings map[string]*domain.Embedding // by chunk ID
	docOrder   []string
}

func NewStore() *Store {
	return &Store{
		categories: make(map[string]*domain.Category),
		documents:  make(map[string]*domain.Document),
		chunks:     make(map[string][]domain.Chunk),
		embeddings: make(map[string]*domain.Embedding),
	}
}

func (s *Store) SaveCategory(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name && existing.ID != c.ID {
			return fmt.Errorf("category name %q: %w", c.Name, domain.ErrDuplicate)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = s.uniqueSlug(domain.Slugify(c.Name), func(slug string) bool {
			for _, other := range s.categories {
				if other.Slug == slug && other.ID != c.ID {
					return true
				}
			}
			return false
		})
	} else {
		for _, other := range s.categories {
			if other.Slug == c.Slug && other.ID != c.ID {
				return fmt.Errorf("category slug %q: %w", c.Slug, domain.ErrDuplicate)
			}
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListCategoryNames(ctx context.Context) ([]string, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.categories, id)
	// Documents keep a null reference, not a cascade.
	for _, d := range s.documents {
		if d.CategoryID == id {
			d.CategoryID = ""
		}
	}
	return nil
}

func (s *Store) SaveDocument(_ context.Context, d *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
		s.docOrder = append(s.docOrder, d.ID)
	} else if existing, ok := s.documents[d.ID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		s.docOrder = append(s.docOrder, d.ID)
	}
	d.UpdatedAt = now
	if d.Slug == "" {
		d.Slug = s.uniqueSlug(domain.Slugify(d.Title), func(slug string) bool {
			for _, other := range s.documents {
				if other.Slug == slug && other.ID != d.ID {
					return true
				}
			}
			return false
		})
	} else {
		for _, other := range s.documents {
			if other.Slug == d.Slug && other.ID != d.ID {
				return fmt.Errorf("document slug %q: %w", d.Slug, domain.ErrDuplicate)
			}
		}
	}
	cp := *d
	s.documents[d.ID] = &cp
	return nil
}

func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) GetDocumentByTitle(_ context.Context, title string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.docOrder {
		if d, ok := s.documents[id]; ok && d.Title == title {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.documents))
	for _, id := range s.docOrder {
		if d, ok := s.documents[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *Store) FilterDocuments(_ context.Context, query string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []domain.Document
	for _, id := range s.docOrder {
		d, ok := s.documents[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(d.Title), q) ||
			strings.Contains(strings.ToLower(d.Content), q) ||
			strings.Contains(strings.ToLower(d.AnonymizedContent), q) ||
			s.chunksContain(id, q) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *Store) chunksContain(documentID, loweredQuery string) bool {
	for _, ch := range s.chunks[documentID] {
		if strings.Contains(strings.ToLower(ch.Text), loweredQuery) {
			return true
		}
	}
	return false
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	for _, ch := range s.chunks[id] {
		delete(s.embeddings, ch.ID)
	}
	delete(s.chunks, id)
	delete(s.documents, id)
	for i, did := range s.docOrder {
		if did == id {
			s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	seen := make(map[int]struct{}, len(chunks))
	for i := range chunks {
		if _, dup := seen[chunks[i].Index]; dup {
			return fmt.Errorf("chunk index %d: %w", chunks[i].Index, domain.ErrDuplicate)
		}
		seen[chunks[i].Index] = struct{}{}
	}
	// Old chunks and their embeddings go away entirely.
	for _, ch := range s.chunks[documentID] {
		delete(s.embeddings, ch.ID)
	}
	now := time.Now().UTC()
	replacement := make([]domain.Chunk, len(chunks))
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
		if chunks[i].CreatedAt.IsZero() {
			chunks[i].CreatedAt = now
		}
		chunks[i].DocumentID = documentID
		replacement[i] = chunks[i]
	}
	sort.Slice(replacement, func(i, j int) bool { return replacement[i].Index < replacement[j].Index })
	s.chunks[documentID] = replacement
	return nil
}

func (s *Store) ListChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks[documentID]))
	copy(out, s.chunks[documentID])
	return out, nil
}

func (s *Store) ListPendingChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Chunk
	for _, ch := range s.chunks[documentID] {
		if !ch.Embedded {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (s *Store) MarkChunkEmbedded(_ context.Context, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, chs := range s.chunks {
		for i := range chs {
			if chs[i].ID == chunkID {
				s.chunks[docID][i].Embedded = true
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (s *Store) SaveEmbedding(_ context.Context, e *domain.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.embeddings[e.ChunkID]; exists {
		return fmt.Errorf("embedding for chunk %s: %w", e.ChunkID, domain.ErrDuplicate)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	cp.Vector = append([]float64(nil), e.Vector...)
	s.embeddings[e.ChunkID] = &cp
	return nil
}

func (s *Store) ListEmbeddedChunks(_ context.Context) ([]domain.EmbeddedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEmbedded(func(*domain.Document) bool { return true }), nil
}

func (s *Store) ListEmbeddedChunksByCategory(_ context.Context, categoryID string) ([]domain.EmbeddedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEmbedded(func(d *domain.Document) bool { return d.CategoryID == categoryID }), nil
}

func (s *Store) collectEmbedded(keep func(*domain.Document) bool) []domain.EmbeddedChunk {
	var out []domain.EmbeddedChunk
	for _, id := range s.docOrder {
		d, ok := s.documents[id]
		if !ok || !keep(d) {
			continue
		}
		for _, ch := range s.chunks[id] {
			emb, ok := s.embeddings[ch.ID]
			if !ok || !ch.Embedded {
				continue
			}
			out = append(out, domain.EmbeddedChunk{
				Chunk:  ch,
				Vector: append([]float64(nil), emb.Vector...),
			})
		}
	}
	return out
}

func (s *Store) uniqueSlug(base string, taken func(string) bool) string {
	if base == "" {
		base = uuid.NewString()[:8]
	}
	slug := base
	for counter := 1; taken(slug); counter++ {
		slug = fmt.Sprintf("%s-%03d", base, counter)
	}
	return slug
}
