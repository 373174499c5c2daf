package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by store lookups that match nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness rule
	// (category name, document slug, chunk index, embedding per chunk).
	ErrDuplicate = errors.New("duplicate")
)

// Anonymizer masks personally identifiable information in free text.
type Anonymizer interface {
	Anonymize(text string) string
}

// Chunker splits anonymized text into bounded retrieval units.
type Chunker interface {
	Split(text string) []string
}

// Embedder converts free text into a numeric vector representation.
// Implementations return nil when the text cannot be embedded; they never
// propagate errors so batch callers can keep going.
type Embedder interface {
	Embed(ctx context.Context, text string) []float64
	ModelName() string
}

// Store is the generic persistence collaborator for documents, categories,
// chunks and embeddings. No engine is assumed; backends are selected by config.
type Store interface {
	SaveCategory(ctx context.Context, c *Category) error
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
	DeleteCategory(ctx context.Context, id string) error

	SaveDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	GetDocumentByTitle(ctx context.Context, title string) (*Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	// FilterDocuments returns distinct documents whose title, content,
	// anonymized content or any owned chunk text contains the query as a
	// case-insensitive substring.
	FilterDocuments(ctx context.Context, query string) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceChunks deletes every chunk owned by the document and inserts
	// the given ones. Chunks are never partially patched.
	ReplaceChunks(ctx context.Context, documentID string, chunks []Chunk) error
	ListChunks(ctx context.Context, documentID string) ([]Chunk, error)
	ListPendingChunks(ctx context.Context, documentID string) ([]Chunk, error)
	MarkChunkEmbedded(ctx context.Context, chunkID string) error

	SaveEmbedding(ctx context.Context, e *Embedding) error
	ListEmbeddedChunks(ctx context.Context) ([]EmbeddedChunk, error)
	ListEmbeddedChunksByCategory(ctx context.Context, categoryID string) ([]EmbeddedChunk, error)
}
