package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HFConfig holds configuration for the Hugging Face zero-shot image
// classification backend.
type HFConfig struct {
	ModelID string        // e.g. "housseynatou/clip-meds"
	Token   string        // optional for public models
	BaseURL string        // default: "https://api-inference.huggingface.co"
	Timeout time.Duration // default: 30s
}

// HFMatcher scores images against candidate labels through the
// Hugging Face inference API.
type HFMatcher struct {
	cfg        HFConfig
	httpClient *http.Client
}

// NewHFMatcher creates an HFMatcher with defaults applied.
func NewHFMatcher(cfg HFConfig) *HFMatcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HFMatcher{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

func (m *HFMatcher) Name() string { return "hf-zero-shot" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// BestMatch returns the candidate index with the highest score. Ties
// break toward the first index (stable argmax over label order, not
// the API's score-sorted order).
func (m *HFMatcher) BestMatch(ctx context.Context, image []byte, labels []string) (int, float64, error) {
	if len(image) == 0 {
		return -1, 0, fmt.Errorf("empty image payload")
	}
	if len(labels) == 0 {
		return -1, 0, fmt.Errorf("no candidate labels")
	}

	payload, err := json.Marshal(hfRequest{
		Inputs:     base64.StdEncoding.EncodeToString(image),
		Parameters: hfParameters{CandidateLabels: labels},
	})
	if err != nil {
		return -1, 0, fmt.Errorf("marshal request: %w", err)
	}

	url := m.cfg.BaseURL + "/models/" + m.cfg.ModelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return -1, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.Token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return -1, 0, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return -1, 0, fmt.Errorf("inference backend status %d: %s", resp.StatusCode, string(body))
	}

	var scores []hfScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return -1, 0, fmt.Errorf("parse response: %w", err)
	}

	byLabel := make(map[string]float64, len(scores))
	for _, s := range scores {
		byLabel[s.Label] = s.Score
	}

	best := -1
	bestScore := 0.0
	for i, label := range labels {
		score, ok := byLabel[label]
		if !ok {
			continue
		}
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best == -1 {
		return -1, 0, fmt.Errorf("inference backend returned no scores for candidates")
	}
	return best, bestScore, nil
}
