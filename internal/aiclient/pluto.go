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

// PlutoConfig configures the PlutoAI client. The service speaks the OpenAI
// responses protocol behind its own base URL.
type PlutoConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// PlutoClient is an OpenAI-responses-compatible adapter for PlutoAI.
// It is generation-only: embedding requests are reported as unsupported.
type PlutoClient struct {
	baseURL    string
	apiKey     string
	model      string
	hc         *http.Client
	maxRetries int
}

func NewPlutoClient(cfg PlutoConfig) (*PlutoClient, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "PLUTOAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("pluto base URL not configured")
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &PlutoClient{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		hc:         &http.Client{Timeout: t},
		maxRetries: defaultMaxRetries,
	}, nil
}

func (c *PlutoClient) Chat(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model":             c.model,
		"input":             []map[string]string{{"role": "user", "content": prompt}},
		"max_output_tokens": 2000,
		"temperature":       0.3,
	})
	payload, err := postJSON(ctx, c.hc, c.baseURL+"/v1/responses", c.apiKey, body, c.maxRetries)
	if err != nil {
		return "", err
	}
	return decodeResponsesOutput(payload)
}

func (c *PlutoClient) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	return nil, errors.New("pluto does not support embeddings")
}

func (c *PlutoClient) EmbeddingModel() string { return "" }
