// Package resolver wraps the downstream chat/intent backends. Both
// clients honor the same fail-soft contract as translation: callers
// always receive an Answer, never an error. A backend that responds
// without an answer, or with a non-success status, yields a fixed
// placeholder; a transport failure yields a degraded Answer carrying
// the cause.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Placeholder is returned when the backend has no usable answer.
// Never an empty string.
const Placeholder = "Désolé, je n'ai pas de réponse pour le moment."

// Query carries the normalized text plus optional caller context.
// Nil optionals are serialized as JSON nulls, never as zero values.
type Query struct {
	Text   string   `json:"text"`
	UserID *string  `json:"userId"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

// Answer is the outcome of one resolution. Cause is non-nil only on
// transport-level failure; Text is always usable.
type Answer struct {
	Text  string
	Cause error
}

// Degraded reports whether the resolution failed at transport level.
func (a Answer) Degraded() bool { return a.Cause != nil }

// Client resolves a query to a natural-language answer.
type Client interface {
	Resolve(ctx context.Context, q Query) Answer
}

// ChatClient calls the main pharmacy-locator resolver backend.
type ChatClient struct {
	url        string
	httpClient *http.Client
}

// NewChatClient creates a ChatClient with a bounded timeout.
func NewChatClient(url string, timeout time.Duration) *ChatClient {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &ChatClient{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Resolve posts the query and extracts the answer field.
func (c *ChatClient) Resolve(ctx context.Context, q Query) Answer {
	body, status, err := post(ctx, c.httpClient, c.url, q)
	if err != nil {
		return Answer{Text: Placeholder, Cause: err}
	}
	if status < 200 || status >= 300 {
		return Answer{Text: Placeholder}
	}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Answer == "" {
		return Answer{Text: Placeholder}
	}
	return Answer{Text: resp.Answer}
}

// AgentClient calls the alternate conversational agent. Its wire
// contract differs: it takes {content} and may reply either with a
// JSON {answer} object or a raw text body.
type AgentClient struct {
	url        string
	httpClient *http.Client
}

// NewAgentClient creates an AgentClient with a bounded timeout.
func NewAgentClient(url string, timeout time.Duration) *AgentClient {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &AgentClient{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Resolve posts the query text as {content} and accepts either answer
// shape.
func (c *AgentClient) Resolve(ctx context.Context, q Query) Answer {
	body, status, err := post(ctx, c.httpClient, c.url, map[string]string{"content": q.Text})
	if err != nil {
		return Answer{Text: Placeholder, Cause: err}
	}
	if status < 200 || status >= 300 {
		return Answer{Text: Placeholder}
	}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Answer != "" {
		return Answer{Text: resp.Answer}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return Answer{Text: text}
	}
	return Answer{Text: Placeholder}
}

func post(ctx context.Context, client *http.Client, url string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("resolver request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
