// Package translate wraps the translation backend behind a fail-soft
// contract: callers always receive a Result, never an error. A failed
// call is represented as a degraded Result carrying the original input
// text untouched plus the cause, so already-correct text is never
// corrupted by a backend outage.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is the outcome of one translation. Cause is nil on a clean
// translation; when non-nil, Text holds the untranslated input.
type Result struct {
	Text  string
	Cause error
}

// Degraded reports whether the translation failed and Text is the
// passed-through input.
func (r Result) Degraded() bool { return r.Cause != nil }

// Translator converts text between language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) Result
}

// Config holds settings for the translation backend client.
type Config struct {
	Endpoint string // default: "https://translation.googleapis.com/language/translate/v2"
	APIKey   string
	Timeout  time.Duration // default: 10s
}

// Client calls a Google-Translate-compatible HTTP backend.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *Cache // nil when no cache is configured
}

// NewClient creates a Client with defaults applied. cache may be nil.
func NewClient(cfg Config, cache *Cache) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://translation.googleapis.com/language/translate/v2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
	}
}

type apiRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	Key    string `json:"key"`
}

type apiResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate converts text from source to target. Identity rule: equal
// codes or empty text return the input unchanged with zero network
// calls. This is a correctness invariant, not an optimization.
func (c *Client) Translate(ctx context.Context, text, source, target string) Result {
	if text == "" || source == target {
		return Result{Text: text}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, text, source, target); ok {
			return Result{Text: cached}
		}
	}

	translated, err := c.call(ctx, text, source, target)
	if err != nil {
		return Result{Text: text, Cause: err}
	}

	if c.cache != nil {
		c.cache.Set(ctx, text, source, target, translated)
	}
	return Result{Text: translated}
}

func (c *Client) call(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(apiRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		Key:    c.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation backend status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Data.Translations) == 0 {
		return "", fmt.Errorf("translation backend returned no translations")
	}
	return apiResp.Data.Translations[0].TranslatedText, nil
}
