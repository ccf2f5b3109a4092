// Package pipeline drives one assistant request through its stages:
// transcription, normalization to French, resolution, denormalization
// back to the caller's language, and optional speech synthesis. Stage
// failures never abort a request; they degrade into diagnostic markers
// inside the affected field so the caller always gets a best-effort
// answer. The only hard failure is the absence of any usable input.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/housseynatou/jules-gateway/internal/resolver"
	"github.com/housseynatou/jules-gateway/internal/stt"
	"github.com/housseynatou/jules-gateway/internal/translate"
	"github.com/housseynatou/jules-gateway/internal/tts"
	"github.com/housseynatou/jules-gateway/internal/vision"
)

// ErrMissingInput is returned when a request carries neither audio nor
// text. It is the single condition surfaced as an HTTP 400.
var ErrMissingInput = errors.New("no usable input payload")

// PivotLanguage is the canonical working language of the resolver.
const PivotLanguage = "fr"

// Request is one inbound assistant request. Exactly one of Audio or
// Text is expected; the handler validates that before calling Assist.
type Request struct {
	Audio     []byte
	AudioName string
	Text      string
	Language  string // declared by text callers; defaults to "fr"
	UserID    *string
	Lat       *float64
	Lng       *float64
}

// Response is the assembled pipeline output. Fields not applicable to
// the route that produced it stay zero-valued.
type Response struct {
	DetectedLanguage string
	Transcript       string
	FrenchText       string
	Answer           string
	Audio            []byte
	AudioContentType string
}

// Route selects which pipeline variant runs. The main route translates
// in and out around the resolver; the agent route skips translation
// and optionally speaks the answer back.
type Route struct {
	Translate       bool
	Resolver        resolver.Client
	SynthesizeReply bool
	SpeechLanguage  string // language hint for synthesis; default "fr"
}

// Service orchestrates the adapters. All dependencies are constructed
// once at startup and must be safe for concurrent use.
type Service struct {
	stt        stt.Provider
	translator translate.Translator
	tts        tts.Provider
	identifier *vision.Identifier
	logger     *slog.Logger
}

// New creates a pipeline Service. tts may be nil when no route
// synthesizes speech.
func New(sttProvider stt.Provider, translator translate.Translator, ttsProvider tts.Provider, identifier *vision.Identifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stt:        sttProvider,
		translator: translator,
		tts:        ttsProvider,
		identifier: identifier,
		logger:     logger,
	}
}

// Assist runs the full pipeline for one request over the given route.
// It returns ErrMissingInput when the request has no audio and no
// text; every other failure degrades into the response fields.
func (s *Service) Assist(ctx context.Context, req Request, route Route) (*Response, error) {
	log := s.logger.With("request_id", uuid.NewString())

	transcript, lang, err := s.intake(ctx, req, log)
	if err != nil {
		return nil, err
	}

	workingText := transcript
	if route.Translate && lang != PivotLanguage {
		res := s.translator.Translate(ctx, transcript, lang, PivotLanguage)
		workingText = renderStage("traduction", res.Text, res.Cause)
		if res.Cause != nil {
			log.Warn("normalization degraded", "source", lang, "error", res.Cause)
		}
	}

	ans := route.Resolver.Resolve(ctx, resolver.Query{
		Text:   workingText,
		UserID: req.UserID,
		Lat:    req.Lat,
		Lng:    req.Lng,
	})
	answer := ans.Text
	if ans.Degraded() {
		answer = renderStage("serveur", "", ans.Cause)
		log.Warn("resolution degraded", "error", ans.Cause)
	}

	if route.Translate && lang != PivotLanguage {
		res := s.translator.Translate(ctx, answer, PivotLanguage, lang)
		answer = renderStage("traduction", res.Text, res.Cause)
		if res.Cause != nil {
			log.Warn("denormalization degraded", "target", lang, "error", res.Cause)
		}
	}

	resp := &Response{
		DetectedLanguage: lang,
		Transcript:       transcript,
		FrenchText:       workingText,
		Answer:           answer,
	}

	if route.SynthesizeReply && s.tts != nil {
		speechLang := route.SpeechLanguage
		if speechLang == "" {
			speechLang = PivotLanguage
		}
		syn, err := s.tts.Synthesize(ctx, tts.SynthesisRequest{Input: answer, Language: speechLang})
		if err != nil {
			// Audio is omitted; the caller sees why in the text.
			resp.Answer = answer + " " + renderStage("synthèse vocale", "", err)
			log.Warn("speech synthesis failed", "error", err)
		} else {
			resp.Audio = syn.Audio
			resp.AudioContentType = syn.ContentType
		}
	}

	return resp, nil
}

// Identify resolves a product photo against the catalog. It never
// fails: matcher errors are logged and reported as no match.
func (s *Service) Identify(ctx context.Context, image []byte) vision.Identification {
	if s.identifier == nil {
		return vision.Identification{}
	}
	ident, err := s.identifier.Identify(ctx, image)
	if err != nil {
		s.logger.Warn("identification failed", "error", err)
		return vision.Identification{}
	}
	return ident
}

// intake picks the input modality and produces the raw transcript plus
// the caller's language.
func (s *Service) intake(ctx context.Context, req Request, log *slog.Logger) (string, string, error) {
	switch {
	case len(req.Audio) > 0:
		tr, err := s.stt.Transcribe(ctx, req.Audio, req.AudioName)
		if err != nil {
			log.Warn("transcription degraded", "error", err)
			return renderStage("transcription", "", err), PivotLanguage, nil
		}
		lang := tr.Language
		if lang == "" {
			lang = PivotLanguage
		}
		return tr.Text, lang, nil
	case req.Text != "":
		lang := req.Language
		if lang == "" {
			lang = PivotLanguage
		}
		return req.Text, lang, nil
	default:
		return "", "", ErrMissingInput
	}
}

// renderStage converts a stage outcome to its wire representation: the
// clean text when cause is nil, otherwise the legacy bracketed
// diagnostic marker.
func renderStage(stage, text string, cause error) string {
	if cause == nil {
		return text
	}
	return fmt.Sprintf("[erreur %s: %v]", stage, cause)
}
