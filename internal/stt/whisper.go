package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperConfig holds configuration for the Whisper transcription
// backend. BaseURL may point at a whisper.cpp server exposing the
// OpenAI-compatible API.
type WhisperConfig struct {
	APIKey           string
	BaseURL          string        // default: OpenAI public API
	Model            string        // default: "whisper-1"
	FallbackLanguage string        // default: "fr"
	Timeout          time.Duration // default: 120s
}

// Whisper transcribes audio through the OpenAI Whisper API.
type Whisper struct {
	cfg    WhisperConfig
	client *openai.Client
}

// NewWhisper creates a Whisper adapter with defaults applied.
func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.FallbackLanguage == "" {
		cfg.FallbackLanguage = "fr"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Whisper{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (w *Whisper) Name() string { return "whisper" }

// Transcribe converts raw audio bytes into text plus a detected
// language. Segment texts are joined by single spaces in recognition
// order; empty audio is an error, never an empty-string success.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.cfg.Model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	segs := make([]string, len(resp.Segments))
	for i, seg := range resp.Segments {
		segs[i] = seg.Text
	}
	text := joinSegments(resp.Text, segs)
	if text == "" {
		return nil, fmt.Errorf("whisper returned no recognizable speech")
	}

	lang := resp.Language
	if lang == "" {
		lang = w.cfg.FallbackLanguage
	}

	return &Transcription{Text: text, Language: lang}, nil
}

// joinSegments concatenates recognized segment texts with single
// spaces, preserving recognition order. With no segments it falls back
// to the engine's whole-text field.
func joinSegments(whole string, segments []string) string {
	if len(segments) == 0 {
		return strings.TrimSpace(whole)
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
