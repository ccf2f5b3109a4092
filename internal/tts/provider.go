package tts

import "context"

// SynthesisRequest holds the parameters for text-to-speech generation.
// Language is a hint for voice selection; backends that pick voice by
// model ignore it.
type SynthesisRequest struct {
	Input    string `json:"input"`
	Language string `json:"language,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}
