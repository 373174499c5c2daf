package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Providers.Default)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 400, cfg.Chunker.MaxChars)
	assert.Equal(t, 5000, cfg.Embedding.MaxTextLength)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.InDelta(t, 0.35, cfg.RAG.Threshold, 1e-9)
	assert.True(t, cfg.Knowledge.AutoEmbedding)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: sqlite\n  path: /tmp/kb.db\nrag:\n  top_k: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "/tmp/kb.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 400, cfg.Chunker.MaxChars)
	assert.InDelta(t, 0.35, cfg.RAG.Threshold, 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Providers.Default = "perplexity"
	cfg.Providers.Perplexity = ProviderConfig{ChatModel: "sonar-pro"}
	cfg.Knowledge.AutoAnonymize = false
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "perplexity", got.Providers.Default)
	assert.Equal(t, "sonar-pro", got.Providers.Perplexity.ChatModel)
	assert.False(t, got.Knowledge.AutoAnonymize)
	assert.True(t, got.Knowledge.AutoEmbedding)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t-"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
