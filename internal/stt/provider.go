package stt

import "context"

// Transcription holds the recognized text and the engine's best-guess
// language code.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error)
	Name() string
}
