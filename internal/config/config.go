package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds connection details for one AI provider.
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKeyEnv      string `yaml:"api_key_env,omitempty"`
	ChatModel      string `yaml:"chat_model,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
	TimeoutSecs    int    `yaml:"timeout_secs,omitempty"`
}

// ProvidersConfig selects the default provider and configures each known one.
type ProvidersConfig struct {
	Default    string         `yaml:"default"`
	OpenAI     ProviderConfig `yaml:"openai,omitempty"`
	Pluto      ProviderConfig `yaml:"pluto,omitempty"`
	Perplexity ProviderConfig `yaml:"perplexity,omitempty"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// EmbeddingConfig configures the embedding gateway.
type EmbeddingConfig struct {
	MaxTextLength int `yaml:"max_text_length"`
}

// RAGConfig holds the retrieval defaults.
type RAGConfig struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// LogConfig selects the logger mode.
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Providers ProvidersConfig `yaml:"providers"`
	Store     StoreConfig     `yaml:"store"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	RAG       RAGConfig       `yaml:"rag"`
	Log       LogConfig       `yaml:"log"`
	Knowledge Settings        `yaml:"knowledge"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragkb/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragkb/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragkb", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Providers: ProvidersConfig{Default: "openai"},
		Store:     StoreConfig{Type: "memory"},
		Chunker:   ChunkerConfig{MaxChars: 400},
		Embedding: EmbeddingConfig{MaxTextLength: 5000},
		RAG:       RAGConfig{TopK: 5, Threshold: 0.35},
		Log:       LogConfig{Mode: "prod"},
		Knowledge: DefaultSettings(),
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Providers.Default == "" {
		cfg.Providers.Default = "openai"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = 400
	}
	if cfg.Embedding.MaxTextLength == 0 {
		cfg.Embedding.MaxTextLength = 5000
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.Threshold == 0 {
		cfg.RAG.Threshold = 0.35
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "prod"
	}
}
