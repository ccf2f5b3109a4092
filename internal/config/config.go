package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	STT       STTConfig
	TTS       TTSConfig
	Translate TranslateConfig
	Resolver  ResolverConfig
	Vision    VisionConfig
	Redis     RedisConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type STTConfig struct {
	OpenAIKey string
	BaseURL   string // override for a local whisper.cpp server
	Model     string
}

type TTSConfig struct {
	Backend    string // "openai" or "piper"
	OpenAIKey  string
	Model      string
	Voice      string
	PiperBin   string
	PiperModel string
}

type TranslateConfig struct {
	APIKey   string
	Endpoint string
	CacheTTL time.Duration
}

type ResolverConfig struct {
	URL      string
	AgentURL string
}

type VisionConfig struct {
	ModelID  string // empty disables identification
	HFToken  string
	MinScore float64
}

type RedisConfig struct {
	Addr     string // empty disables the translation cache
	Password string
	DB       int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cacheTTL, err := getEnvInt("TRANSLATE_CACHE_TTL", 86400)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSLATE_CACHE_TTL: %w", err)
	}

	minScore, err := getEnvFloat("MED_MIN_SCORE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid MED_MIN_SCORE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		STT: STTConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("STT_OPENAI_BASE_URL", ""),
			Model:     getEnv("STT_OPENAI_MODEL", ""),
		},
		TTS: TTSConfig{
			Backend:    getEnv("TTS_BACKEND", "openai"),
			OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:      getEnv("TTS_OPENAI_MODEL", ""),
			Voice:      getEnv("TTS_VOICE", ""),
			PiperBin:   getEnv("TTS_PIPER_BIN", "piper"),
			PiperModel: getEnv("TTS_PIPER_MODEL", ""),
		},
		Translate: TranslateConfig{
			APIKey:   getEnv("TRANSLATE_API_KEY", ""),
			Endpoint: getEnv("TRANSLATE_API_URL", ""),
			CacheTTL: time.Duration(cacheTTL) * time.Second,
		},
		Resolver: ResolverConfig{
			URL:      getEnv("RESOLVER_URL", ""),
			AgentURL: getEnv("JULES_API_URL", "https://api.lovable.so/functions/jules"),
		},
		Vision: VisionConfig{
			ModelID:  getEnv("MED_MODEL_ID", ""),
			HFToken:  getEnv("HF_API_TOKEN", ""),
			MinScore: minScore,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate fails fast on missing required configuration. The vision
// model id is deliberately not checked: its absence is a valid
// "identification disabled" state.
func (c *Config) Validate() error {
	var missing []string
	if c.STT.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Translate.APIKey == "" {
		missing = append(missing, "TRANSLATE_API_KEY")
	}
	if c.Resolver.URL == "" {
		missing = append(missing, "RESOLVER_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
