package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/housseynatou/jules-gateway/internal/catalog"
	"github.com/housseynatou/jules-gateway/internal/resolver"
	"github.com/housseynatou/jules-gateway/internal/stt"
	"github.com/housseynatou/jules-gateway/internal/translate"
	"github.com/housseynatou/jules-gateway/internal/tts"
	"github.com/housseynatou/jules-gateway/internal/vision"
)

// Test fakes defined locally to control behavior per test.

type fakeSTT struct {
	transcribe func(audio []byte) (*stt.Transcription, error)
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte, filename string) (*stt.Transcription, error) {
	return f.transcribe(audio)
}
func (f *fakeSTT) Name() string { return "fake-stt" }

type fakeTranslator struct {
	calls     int
	translate func(text, source, target string) translate.Result
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) translate.Result {
	f.calls++
	return f.translate(text, source, target)
}

type fakeResolver struct {
	queries []resolver.Query
	resolve func(q resolver.Query) resolver.Answer
}

func (f *fakeResolver) Resolve(ctx context.Context, q resolver.Query) resolver.Answer {
	f.queries = append(f.queries, q)
	return f.resolve(q)
}

type fakeTTS struct {
	synthesize func(req tts.SynthesisRequest) (*tts.SynthesisResult, error)
}

func (f *fakeTTS) Synthesize(ctx context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	return f.synthesize(req)
}
func (f *fakeTTS) Name() string { return "fake-tts" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identityTranslator(t *testing.T) *fakeTranslator {
	return &fakeTranslator{translate: func(text, source, target string) translate.Result {
		t.Fatalf("translator should not be called (text=%q %s->%s)", text, source, target)
		return translate.Result{}
	}}
}

func TestAssist_MissingInput(t *testing.T) {
	svc := New(&fakeSTT{}, identityTranslator(t), nil, nil, testLogger())

	_, err := svc.Assist(context.Background(), Request{}, Route{Translate: true, Resolver: &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		t.Fatal("resolver should not be called without input")
		return resolver.Answer{}
	}}})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestAssist_FrenchTextSkipsTranslation(t *testing.T) {
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "Bonjour à vous"}
	}}
	svc := New(&fakeSTT{}, identityTranslator(t), nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Bonjour", Language: "fr"}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}

	if resp.FrenchText != resp.Transcript {
		t.Errorf("texte_fr must equal transcription for French input: %q vs %q", resp.FrenchText, resp.Transcript)
	}
	if resp.Answer != "Bonjour à vous" {
		t.Errorf("got answer %q", resp.Answer)
	}
	if len(rs.queries) != 1 {
		t.Fatalf("expected one resolver call, got %d", len(rs.queries))
	}
	q := rs.queries[0]
	if q.Text != "Bonjour" || q.UserID != nil || q.Lat != nil || q.Lng != nil {
		t.Errorf("unexpected resolver query: %+v", q)
	}
}

func TestAssist_DeclaredLanguageDefaultsToFrench(t *testing.T) {
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "ok"}
	}}
	svc := New(&fakeSTT{}, identityTranslator(t), nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Bonjour"}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}
	if resp.DetectedLanguage != "fr" {
		t.Errorf("got language %q, want fr", resp.DetectedLanguage)
	}
}

func TestAssist_ForeignTextTranslatesInAndOut(t *testing.T) {
	tr := &fakeTranslator{translate: func(text, source, target string) translate.Result {
		switch {
		case source == "en" && target == "fr" && text == "Hello":
			return translate.Result{Text: "Bonjour"}
		case source == "fr" && target == "en" && text == "Bonjour à vous":
			return translate.Result{Text: "Hello there"}
		default:
			return translate.Result{Text: text, Cause: errors.New("unexpected translation")}
		}
	}}
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		if q.Text != "Bonjour" {
			return resolver.Answer{Text: "wrong normalized text: " + q.Text}
		}
		return resolver.Answer{Text: "Bonjour à vous"}
	}}
	svc := New(&fakeSTT{}, tr, nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Hello", Language: "en"}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}

	if tr.calls != 2 {
		t.Errorf("expected exactly two translation calls, got %d", tr.calls)
	}
	if resp.FrenchText != "Bonjour" {
		t.Errorf("got texte_fr %q", resp.FrenchText)
	}
	if resp.Answer != "Hello there" {
		t.Errorf("got answer %q, want Hello there", resp.Answer)
	}
}

func TestAssist_AudioFrenchEndToEnd(t *testing.T) {
	sttFake := &fakeSTT{transcribe: func(audio []byte) (*stt.Transcription, error) {
		return &stt.Transcription{Text: "Bonjour", Language: "fr"}, nil
	}}
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "Bonjour à vous"}
	}}
	svc := New(sttFake, identityTranslator(t), nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Audio: []byte("riff")}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}

	if resp.DetectedLanguage != "fr" || resp.Transcript != "Bonjour" || resp.FrenchText != "Bonjour" || resp.Answer != "Bonjour à vous" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAssist_TranslationFailureDegradesToMarker(t *testing.T) {
	tr := &fakeTranslator{translate: func(text, source, target string) translate.Result {
		return translate.Result{Text: text, Cause: errors.New("translation backend status 503")}
	}}
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "ok"}
	}}
	svc := New(&fakeSTT{}, tr, nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Hola", Language: "es"}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}
	if !strings.Contains(resp.FrenchText, "[erreur traduction:") {
		t.Errorf("texte_fr should carry the bracketed marker, got %q", resp.FrenchText)
	}
	if !strings.Contains(resp.FrenchText, "503") {
		t.Errorf("marker should include the status, got %q", resp.FrenchText)
	}
}

func TestAssist_ResolverFailureBracketedDiagnostic(t *testing.T) {
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: resolver.Placeholder, Cause: errors.New("context deadline exceeded")}
	}}
	svc := New(&fakeSTT{}, identityTranslator(t), nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Bonjour", Language: "fr"}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("degraded resolution must not fail the request: %v", err)
	}
	if !strings.Contains(resp.Answer, "[erreur serveur:") {
		t.Errorf("answer should carry the bracketed diagnostic, got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "context deadline exceeded") {
		t.Errorf("diagnostic should embed the cause, got %q", resp.Answer)
	}
}

func TestAssist_TranscriptionFailureDegrades(t *testing.T) {
	sttFake := &fakeSTT{transcribe: func(audio []byte) (*stt.Transcription, error) {
		return nil, errors.New("empty audio payload")
	}}
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "ok"}
	}}
	svc := New(sttFake, identityTranslator(t), nil, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Audio: []byte("x")}, Route{Translate: true, Resolver: rs})
	if err != nil {
		t.Fatalf("degraded transcription must not fail the request: %v", err)
	}
	if !strings.Contains(resp.Transcript, "[erreur transcription:") {
		t.Errorf("transcript should carry the bracketed marker, got %q", resp.Transcript)
	}
	if resp.DetectedLanguage != "fr" {
		t.Errorf("degraded transcription defaults to fr, got %q", resp.DetectedLanguage)
	}
}

func TestAssist_JulesRouteSkipsTranslationAndSpeaks(t *testing.T) {
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		if q.Text != "Hello" {
			t.Errorf("agent route must receive raw text, got %q", q.Text)
		}
		return resolver.Answer{Text: "Hi there"}
	}}
	speech := &fakeTTS{synthesize: func(req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		if req.Input != "Hi there" {
			t.Errorf("synthesis input should be the answer, got %q", req.Input)
		}
		return &tts.SynthesisResult{Audio: []byte("mp3"), ContentType: "audio/mpeg"}, nil
	}}
	svc := New(&fakeSTT{}, identityTranslator(t), speech, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Hello", Language: "en"},
		Route{Resolver: rs, SynthesizeReply: true})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}
	if resp.Answer != "Hi there" {
		t.Errorf("got answer %q", resp.Answer)
	}
	if string(resp.Audio) != "mp3" || resp.AudioContentType != "audio/mpeg" {
		t.Errorf("expected synthesized audio, got %+v", resp)
	}
}

func TestAssist_SynthesisFailureAnnotatesAnswer(t *testing.T) {
	rs := &fakeResolver{resolve: func(q resolver.Query) resolver.Answer {
		return resolver.Answer{Text: "Hi there"}
	}}
	speech := &fakeTTS{synthesize: func(req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		return nil, errors.New("piper failed")
	}}
	svc := New(&fakeSTT{}, identityTranslator(t), speech, nil, testLogger())

	resp, err := svc.Assist(context.Background(), Request{Text: "Hello"},
		Route{Resolver: rs, SynthesizeReply: true})
	if err != nil {
		t.Fatalf("Assist failed: %v", err)
	}
	if len(resp.Audio) != 0 {
		t.Error("audio must be omitted when synthesis fails")
	}
	if !strings.Contains(resp.Answer, "Hi there") || !strings.Contains(resp.Answer, "[erreur synthèse vocale:") {
		t.Errorf("answer should keep the text and note the failure, got %q", resp.Answer)
	}
}

func TestIdentify_NoIdentifierConfigured(t *testing.T) {
	svc := New(&fakeSTT{}, identityTranslator(t), nil, nil, testLogger())

	ident := svc.Identify(context.Background(), []byte("jpeg"))
	if ident.Product != nil || ident.Price != nil {
		t.Errorf("expected no match, got %+v", ident)
	}
}

func TestIdentify_DisabledMatcherNeverFails(t *testing.T) {
	identifier := vision.NewIdentifier(nil, catalog.Default(), 0)
	svc := New(&fakeSTT{}, identityTranslator(t), nil, identifier, testLogger())

	ident := svc.Identify(context.Background(), []byte("jpeg"))
	if ident.Product != nil || ident.Price != nil {
		t.Errorf("expected no match from disabled matcher, got %+v", ident)
	}
}
