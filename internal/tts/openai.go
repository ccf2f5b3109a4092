package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI TTS backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string        // default: "tts-1"
	Voice   string        // default: "alloy"
	Timeout time.Duration // default: 60s
}

// OpenAITTS synthesizes speech through the OpenAI speech API.
type OpenAITTS struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAITTS creates an OpenAITTS with defaults applied.
func NewOpenAITTS(cfg OpenAIConfig) *OpenAITTS {
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}
	if cfg.Voice == "" {
		cfg.Voice = string(openai.VoiceAlloy)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAITTS{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (o *OpenAITTS) Name() string { return "openai-tts" }

// Synthesize converts text to MP3 audio bytes.
func (o *OpenAITTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if req.Input == "" {
		return nil, fmt.Errorf("empty synthesis input")
	}

	voice := req.Voice
	if voice == "" {
		voice = o.cfg.Voice
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(o.cfg.Model),
		Input: req.Input,
		Voice: openai.SpeechVoice(voice),
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	return &SynthesisResult{Audio: audio, ContentType: "audio/mpeg"}, nil
}
