package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PiperConfig holds configuration for the local Piper TTS backend.
// Voice and language are baked into the model file.
type PiperConfig struct {
	BinPath   string // default: "piper"
	ModelPath string // required: path to the .onnx voice model
}

// Piper synthesizes speech by piping text through the piper binary.
type Piper struct {
	cfg PiperConfig
}

// NewPiper creates a Piper adapter with defaults applied.
func NewPiper(cfg PiperConfig) *Piper {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	return &Piper{cfg: cfg}
}

func (p *Piper) Name() string { return "piper" }

// Synthesize runs piper and returns the WAV output from stdout.
func (p *Piper) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if req.Input == "" {
		return nil, fmt.Errorf("empty synthesis input")
	}
	if p.cfg.ModelPath == "" {
		return nil, fmt.Errorf("piper model path is required (set TTS_PIPER_MODEL)")
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, "--model", p.cfg.ModelPath, "--output-raw")
	cmd.Stdin = strings.NewReader(req.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, stderr.String())
	}

	return &SynthesisResult{Audio: stdout.Bytes(), ContentType: "audio/wav"}, nil
}
