package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"research-assistant/internal/assistant"
	"research-assistant/internal/cache"
	"research-assistant/internal/config"
	"research-assistant/internal/llm"
	"research-assistant/internal/logger"
	"research-assistant/internal/session"
)

// Deps bundles the runtime dependencies for the assistant service.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Sessions  *session.Manager
	Assistant *assistant.Service
	Cache     cache.Cache
}

// Build loads env, config, and shared components. It fails when neither
// provider credential is configured.
func Build() (Deps, error) {
	// A .env file is optional; environment variables alone are fine.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Deps{}, err
	}

	clients, err := buildClients(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize providers: %w", err)
	}

	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}

	svc := assistant.New(log, clients, c, time.Duration(cfg.CacheTTL)*time.Second)

	return Deps{
		Config:    cfg,
		Log:       log,
		Sessions:  session.NewManager(),
		Assistant: svc,
		Cache:     c,
	}, nil
}

func buildClients(cfg config.Config, log *slog.Logger) (map[llm.Provider]llm.Client, error) {
	clients := make(map[llm.Provider]llm.Client)
	if cfg.GroqKey != "" {
		groq, err := llm.NewGroqClient(cfg.GroqKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Groq client: %w", err)
		}
		clients[llm.ProviderGroq] = groq
		log.Info("Groq provider enabled")
	}
	if cfg.GeminiKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		clients[llm.ProviderGemini] = gemini
		log.Info("Gemini provider enabled")
	}
	return clients, nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
		log.Info("using Redis extraction cache", "addr", cfg.RedisAddr)
		return c, nil
	case "none":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, none)", cfg.CacheProvider)
	}
}
