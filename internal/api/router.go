package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/housseynatou/jules-gateway/internal/api/handlers"
	"github.com/housseynatou/jules-gateway/internal/api/middleware"
	"github.com/housseynatou/jules-gateway/internal/catalog"
	"github.com/housseynatou/jules-gateway/internal/config"
	"github.com/housseynatou/jules-gateway/internal/pipeline"
	"github.com/housseynatou/jules-gateway/internal/resolver"
	"github.com/housseynatou/jules-gateway/internal/stt"
	"github.com/housseynatou/jules-gateway/internal/translate"
	"github.com/housseynatou/jules-gateway/internal/tts"
	"github.com/housseynatou/jules-gateway/internal/vision"
)

type Router struct {
	mux   *chi.Mux
	cfg   *config.Config
	redis *redis.Client // nil when no cache is configured
}

func NewRouter(cfg *config.Config, rdb *redis.Client) *Router {
	return &Router{mux: chi.NewRouter(), cfg: cfg, redis: rdb}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(20, 40)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Adapters, built once and shared across requests
	var cache *translate.Cache
	if rt.redis != nil {
		cache = translate.NewCache(rt.redis, rt.cfg.Translate.CacheTTL)
	}
	translator := translate.NewClient(translate.Config{
		Endpoint: rt.cfg.Translate.Endpoint,
		APIKey:   rt.cfg.Translate.APIKey,
	}, cache)

	whisper := stt.NewWhisper(stt.WhisperConfig{
		APIKey:  rt.cfg.STT.OpenAIKey,
		BaseURL: rt.cfg.STT.BaseURL,
		Model:   rt.cfg.STT.Model,
	})

	var speech tts.Provider
	if rt.cfg.TTS.Backend == "piper" {
		speech = tts.NewPiper(tts.PiperConfig{
			BinPath:   rt.cfg.TTS.PiperBin,
			ModelPath: rt.cfg.TTS.PiperModel,
		})
	} else {
		speech = tts.NewOpenAITTS(tts.OpenAIConfig{
			APIKey: rt.cfg.TTS.OpenAIKey,
			Model:  rt.cfg.TTS.Model,
			Voice:  rt.cfg.TTS.Voice,
		})
	}

	var matcher vision.Matcher
	if rt.cfg.Vision.ModelID != "" {
		matcher = vision.NewHFMatcher(vision.HFConfig{
			ModelID: rt.cfg.Vision.ModelID,
			Token:   rt.cfg.Vision.HFToken,
		})
	} else {
		slog.Info("MED_MODEL_ID not set, medicine identification disabled")
	}
	identifier := vision.NewIdentifier(matcher, catalog.Default(), rt.cfg.Vision.MinScore)

	svc := pipeline.New(whisper, translator, speech, identifier, slog.Default())

	mainRoute := pipeline.Route{
		Translate: true,
		Resolver:  resolver.NewChatClient(rt.cfg.Resolver.URL, 20*time.Second),
	}
	julesRoute := pipeline.Route{
		Resolver:        resolver.NewAgentClient(rt.cfg.Resolver.AgentURL, 20*time.Second),
		SynthesizeReply: true,
	}

	assist := handlers.NewAssistHandler(svc, mainRoute, julesRoute)
	identify := handlers.NewIdentifyHandler(svc)

	r.Post("/transcribe", assist.Transcribe)
	r.Post("/transcribe_jules", assist.TranscribeJules)
	r.Post("/identify_med", identify.IdentifyMed)

	return r
}
