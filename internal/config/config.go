package config

import (
	"errors"
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the assistant service.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM providers. At least one key must be set or startup fails.
	GroqKey   string `env:"GROQ_API_KEY"`
	GeminiKey string `env:"GEMINI_API_KEY"`

	// Extraction cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "redis" or "none"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds
}

// ErrNoProviderKeys is returned when neither provider credential is configured.
var ErrNoProviderKeys = errors.New("no API keys found: set GROQ_API_KEY and/or GEMINI_API_KEY")

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// Validate enforces the startup invariant: the service refuses to run
// without at least one provider credential.
func (c Config) Validate() error {
	if c.GroqKey == "" && c.GeminiKey == "" {
		return ErrNoProviderKeys
	}
	return nil
}
