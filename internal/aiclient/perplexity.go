package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// PerplexityConfig configures the Perplexity client.
type PerplexityConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// PerplexityClient talks to the Perplexity chat completions endpoint.
// It is generation-only: embedding requests are reported as unsupported.
type PerplexityClient struct {
	baseURL    string
	apiKey     string
	model      string
	hc         *http.Client
	maxRetries int
}

func NewPerplexityClient(cfg PerplexityConfig) (*PerplexityClient, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "PERPLEXITY_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "sonar"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &PerplexityClient{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		hc:         &http.Client{Timeout: t},
		maxRetries: defaultMaxRetries,
	}, nil
}

func (c *PerplexityClient) Chat(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	})
	payload, err := postJSON(ctx, c.hc, c.baseURL+"/chat/completions", c.apiKey, body, c.maxRetries)
	if err != nil {
		return "", err
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *PerplexityClient) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	return nil, errors.New("perplexity does not support embeddings")
}

func (c *PerplexityClient) EmbeddingModel() string { return "" }
