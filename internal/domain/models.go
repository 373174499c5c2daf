package domain

import "time"

// Document is a single knowledge item. Content is the raw authored text;
// AnonymizedContent is derived from it by the anonymizer and never hand-edited.
type Document struct {
	ID                string
	Title             string
	Slug              string
	Content           string
	AnonymizedContent string
	CategoryID        string // empty when the document has no category
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Category groups documents. Name is unique; deleting a category leaves
// referencing documents with an empty CategoryID.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

// Chunk is a bounded-length part of a document's anonymized content used as
// the atomic retrieval unit. (DocumentID, Index) is unique per document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	Embedded   bool
	CreatedAt  time.Time
}

// Embedding holds the vector for exactly one chunk.
type Embedding struct {
	ID        string
	ChunkID   string
	Vector    []float64
	ModelName string
	CreatedAt time.Time
}

// EmbeddedChunk pairs a chunk with its stored vector for similarity scans.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float64
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// DocumentScore pairs a document with its lexical search score.
type DocumentScore struct {
	Document Document
	Score    float64
}
