package embedding

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxTextLength caps the characters sent to the embedding backend.
const DefaultMaxTextLength = 5000

// EmbeddingClient is the subset of the AI client the gateway needs.
type EmbeddingClient interface {
	GetEmbedding(ctx context.Context, text string) ([]float64, error)
	EmbeddingModel() string
}

// Gateway wraps an embedding-capable client behind a uniform contract:
// it caps input length and converts every failure into a nil result so
// batch callers keep processing. Failures are logged, never raised.
type Gateway struct {
	client    EmbeddingClient
	maxLength int
	logger    *zap.Logger
}

func NewGateway(client EmbeddingClient, maxLength int, logger *zap.Logger) *Gateway {
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, maxLength: maxLength, logger: logger}
}

// Embed returns the vector for the text, or nil when the text is empty or
// the underlying call fails.
func (g *Gateway) Embed(ctx context.Context, text string) []float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > g.maxLength {
		text = string(runes[:g.maxLength])
		if strings.TrimSpace(text) == "" {
			return nil
		}
	}
	vec, err := g.client.GetEmbedding(ctx, text)
	if err != nil {
		g.logger.Warn("embedding failed", zap.Error(err))
		return nil
	}
	if len(vec) == 0 {
		g.logger.Warn("embedding returned an empty vector")
		return nil
	}
	return vec
}

// ModelName reports the model the underlying client embeds with.
func (g *Gateway) ModelName() string { return g.client.EmbeddingModel() }
