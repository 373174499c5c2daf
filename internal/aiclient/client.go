package aiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Provider identifies one of the supported AI backends. The set is closed:
// provider selection is a tagged variant, not free-form string dispatch.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderPluto      Provider = "pluto"
	ProviderPerplexity Provider = "perplexity"
)

// ParseProvider validates a provider name coming from config or a request.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderPluto, ProviderPerplexity:
		return Provider(s), nil
	case "":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Client is the generation and embedding capability consumed by the core.
// Chat may fail; callers surface the failure as inline text. GetEmbedding
// failures are treated as hard failures by the embedding gateway.
type Client interface {
	Chat(ctx context.Context, prompt string) (string, error)
	GetEmbedding(ctx context.Context, text string) ([]float64, error)
	EmbeddingModel() string
}

// Config bundles the per-provider settings.
type Config struct {
	OpenAI     OpenAIConfig
	Pluto      PlutoConfig
	Perplexity PerplexityConfig
}

// New constructs the client for the given provider. Construction fails on a
// missing API key so call sites never see half-configured clients.
func New(p Provider, cfg Config) (Client, error) {
	switch p {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI)
	case ProviderPluto:
		return NewPlutoClient(cfg.Pluto)
	case ProviderPerplexity:
		return NewPerplexityClient(cfg.Perplexity)
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}

const defaultMaxRetries = 5

// postJSON sends an authorized JSON POST and returns the response payload.
// 429 and 5xx responses are retried with exponential backoff, honoring
// Retry-After when the server provides one.
func postJSON(ctx context.Context, hc *http.Client, url, apiKey string, body []byte, maxRetries int) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("request failed: %s", resp.Status)
			if attempt < maxRetries {
				sleep(ctx, delay)
				continue
			}
			return nil, lastErr
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("request failed (%s): %s", resp.Status, truncate(string(payload), 200))
		}
		return payload, nil
	}
	return nil, lastErr
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
