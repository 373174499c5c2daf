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

// OpenAIConfig configures the OpenAI client.
type OpenAIConfig struct {
	BaseURL        string
	APIKeyEnv      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
}

// OpenAIClient talks to the OpenAI responses and embeddings endpoints.
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	hc             *http.Client
	maxRetries     int
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OpenAIClient{
		baseURL:        cfg.BaseURL,
		apiKey:         key,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		hc:             &http.Client{Timeout: t},
		maxRetries:     defaultMaxRetries,
	}, nil
}

// Chat sends the prompt through the responses endpoint and returns the first
// output text.
func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model":             c.chatModel,
		"input":             []map[string]string{{"role": "user", "content": prompt}},
		"max_output_tokens": 2000,
	})
	payload, err := postJSON(ctx, c.hc, c.baseURL+"/responses", c.apiKey, body, c.maxRetries)
	if err != nil {
		return "", err
	}
	return decodeResponsesOutput(payload)
}

// GetEmbedding returns the embedding vector for the given text.
func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	body, _ := json.Marshal(map[string]string{
		"model": c.embeddingModel,
		"input": text,
	})
	payload, err := postJSON(ctx, c.hc, c.baseURL+"/embeddings", c.apiKey, body, c.maxRetries)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return out.Data[0].Embedding, nil
}

func (c *OpenAIClient) EmbeddingModel() string { return c.embeddingModel }

// decodeResponsesOutput extracts the first text part from an OpenAI
// responses-shaped payload.
func decodeResponsesOutput(payload []byte) (string, error) {
	var out struct {
		Output []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	for _, o := range out.Output {
		for _, part := range o.Content {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", errors.New("no output text returned")
}
