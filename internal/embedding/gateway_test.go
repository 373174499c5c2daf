package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeClient struct {
	lastText string
	vector   []float64
	err      error
}

func (f *fakeClient) GetEmbedding(_ context.Context, text string) ([]float64, error) {
	f.lastText = text
	return f.vector, f.err
}

func (f *fakeClient) EmbeddingModel() string { return "test-model" }

func TestEmbedReturnsVector(t *testing.T) {
	fc := &fakeClient{vector: []float64{0.1, 0.2}}
	g := NewGateway(fc, 0, zap.NewNop())
	got := g.Embed(context.Background(), "hello")
	assert.Equal(t, []float64{0.1, 0.2}, got)
	assert.Equal(t, "hello", fc.lastText)
}

func TestEmbedEmptyInput(t *testing.T) {
	fc := &fakeClient{vector: []float64{1}}
	g := NewGateway(fc, 0, zap.NewNop())
	assert.Nil(t, g.Embed(context.Background(), ""))
	assert.Nil(t, g.Embed(context.Background(), "  \n "))
	assert.Empty(t, fc.lastText, "client must not be called for empty input")
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	fc := &fakeClient{vector: []float64{1}}
	g := NewGateway(fc, 10, zap.NewNop())
	g.Embed(context.Background(), strings.Repeat("é", 25))
	assert.Equal(t, 10, utf8.RuneCountInString(fc.lastText))
}

func TestEmbedClientFailure(t *testing.T) {
	fc := &fakeClient{err: errors.New("backend down")}
	g := NewGateway(fc, 0, zap.NewNop())
	assert.Nil(t, g.Embed(context.Background(), "hello"))
}

func TestEmbedEmptyVectorTreatedAsFailure(t *testing.T) {
	fc := &fakeClient{vector: nil}
	g := NewGateway(fc, 0, zap.NewNop())
	assert.Nil(t, g.Embed(context.Background(), "hello"))
}

func TestModelName(t *testing.T) {
	g := NewGateway(&fakeClient{}, 0, zap.NewNop())
	assert.Equal(t, "test-model", g.ModelName())
}
