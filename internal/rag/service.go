package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragkb/internal/config"
	"ragkb/internal/domain"
	"ragkb/internal/prompt"
	"ragkb/internal/search"
)

// ErrEmptyQuery rejects AnswerQuery requests without a query.
var ErrEmptyQuery = errors.New("query must not be empty")

// Detector classifies a query into a stored category name.
type Detector interface {
	Detect(ctx context.Context, query string) string
}

// LexicalSearcher is the classic substring scorer.
type LexicalSearcher interface {
	Search(ctx context.Context, query string) ([]domain.DocumentScore, error)
}

// ChunkSearcher is the similarity engine.
type ChunkSearcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64, category string) ([]domain.SearchResult, error)
}

// Generator is the generation capability used for the final answer.
type Generator interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// GeneratorFactory resolves a provider name to a generation client. An empty
// name selects the configured default.
type GeneratorFactory func(provider string) (Generator, error)

// Deps wires the pipeline collaborators into the service.
type Deps struct {
	Store      domain.Store
	Anonymizer domain.Anonymizer
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Detector   Detector
	Lexical    LexicalSearcher
	Engine     ChunkSearcher
	Generators GeneratorFactory
	Settings   config.Settings
	Logger     *zap.Logger

	// TopK and Threshold are the configured retrieval defaults, applied when
	// a Request leaves them unset. Zero values fall back to the engine
	// defaults.
	TopK      int
	Threshold float64
}

// Service runs the ingestion pipeline on document writes and composes the
// retrieval pipeline for queries.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: deps.Logger}
}

// SaveDocument persists the document and runs the derived-state pipeline:
// anonymize, re-chunk, embed. Empty content skips the pipeline entirely.
// Embedding failures degrade to unembedded chunks instead of failing the
// write; a later EmbedPending run picks them up.
func (s *Service) SaveDocument(ctx context.Context, doc *domain.Document) error {
	content := strings.TrimSpace(doc.Content)
	if content != "" {
		if s.deps.Settings.AutoAnonymize {
			doc.AnonymizedContent = s.deps.Anonymizer.Anonymize(doc.Content)
		} else {
			doc.AnonymizedContent = doc.Content
		}
	}
	if err := s.deps.Store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if content == "" {
		s.logger.Debug("document has no content, skipping pipeline", zap.String("id", doc.ID))
		return nil
	}

	pieces := s.deps.Chunker.Split(doc.AnonymizedContent)
	chunks := make([]domain.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = domain.Chunk{Index: i, Text: text}
	}
	if err := s.deps.Store.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("replacing chunks: %w", err)
	}

	if !s.deps.Settings.AutoEmbedding {
		return nil
	}
	if _, err := s.EmbedPending(ctx, doc.ID); err != nil {
		// The write itself succeeded; leftover chunks stay embedded=false.
		s.logger.Warn("embedding stage failed", zap.String("id", doc.ID), zap.Error(err))
	}
	return nil
}

// EmbedPending embeds every still-unembedded chunk of the document and
// returns how many were embedded. Individual embedding failures are skipped;
// re-runs only process what is left.
func (s *Service) EmbedPending(ctx context.Context, documentID string) (int, error) {
	if s.deps.Embedder == nil {
		return 0, errors.New("no embedding client configured")
	}
	pending, err := s.deps.Store.ListPendingChunks(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("listing pending chunks: %w", err)
	}
	embedded := 0
	for _, ch := range pending {
		vec := s.deps.Embedder.Embed(ctx, ch.Text)
		if vec == nil {
			s.logger.Warn("chunk embedding failed, leaving pending",
				zap.String("chunk", ch.ID), zap.Int("index", ch.Index))
			continue
		}
		emb := &domain.Embedding{ChunkID: ch.ID, Vector: vec, ModelName: s.deps.Embedder.ModelName()}
		if err := s.deps.Store.SaveEmbedding(ctx, emb); err != nil {
			return embedded, fmt.Errorf("saving embedding: %w", err)
		}
		if err := s.deps.Store.MarkChunkEmbedded(ctx, ch.ID); err != nil {
			return embedded, fmt.Errorf("marking chunk embedded: %w", err)
		}
		embedded++
	}
	return embedded, nil
}

// Request is one retrieval question. Provider may be empty to use the
// configured default; TopK/Threshold fall back to the engine defaults.
type Request struct {
	Query     string
	Provider  string
	TopK      int
	Threshold float64
}

// EmbeddingResult is one similarity hit annotated against the threshold.
type EmbeddingResult struct {
	ChunkText string
	Score     float64
	IsAbove   bool
}

// Result is the composed answer to one Request.
type Result struct {
	DetectedCategory string
	LexicalResults   []domain.DocumentScore
	EmbeddingResults []EmbeddingResult
	FinalAnswer      string
}

// AnswerQuery composes detection, lexical scoring, similarity search, prompt
// building and generation. The detected category is surfaced for
// observability only; the similarity search runs over the full corpus.
// Collaborator failures degrade the relevant section instead of failing the
// request; only an empty query or an unknown provider is rejected.
func (s *Service) AnswerQuery(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	gen, err := s.deps.Generators(req.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolving provider: %w", err)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.deps.TopK
	}
	if topK <= 0 {
		topK = search.DefaultTopK
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.deps.Threshold
	}
	if threshold <= 0 {
		threshold = search.DefaultThreshold
	}

	res := &Result{DetectedCategory: s.deps.Detector.Detect(ctx, query)}

	lexical, err := s.deps.Lexical.Search(ctx, query)
	if err != nil {
		s.logger.Warn("lexical search failed", zap.Error(err))
	}
	res.LexicalResults = lexical

	hits, err := s.deps.Engine.Search(ctx, query, topK, threshold, "")
	if err != nil {
		s.logger.Warn("similarity search failed", zap.Error(err))
	}
	res.EmbeddingResults = make([]EmbeddingResult, len(hits))
	for i, h := range hits {
		res.EmbeddingResults[i] = EmbeddingResult{
			ChunkText: h.Chunk.Text,
			Score:     h.Score,
			IsAbove:   h.Score >= threshold,
		}
	}

	answer, err := gen.Chat(ctx, prompt.Build(query, hits))
	if err != nil {
		s.logger.Warn("answer generation failed", zap.Error(err))
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}
	res.FinalAnswer = answer
	return res, nil
}
