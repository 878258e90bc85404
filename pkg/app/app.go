// Package app assembles the insight engine from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/anonymizer"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/cache"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/config"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/handlers"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/llm"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/mcp"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/mcp/tools"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/middleware"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/prompts"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/retry"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/services"
)

// redisConnectTimeout bounds the startup ping.
const redisConnectTimeout = 5 * time.Second

// App holds the wired components.
type App struct {
	Config    *config.Config
	Generator llm.TextGenerator
	Cache     *cache.Manager
	Insights  services.InsightService
	logger    *zap.Logger
}

// New builds the provider client, the cache and the insight service.
// An unreachable Redis is logged and replaced by the in-memory store.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	generator, err := llm.NewTextGenerator(LLMConfig(cfg), BreakerConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	store := newCacheStore(ctx, cfg, logger)
	cacheManager := cache.NewManager(store, cfg.Cache.Prefix, cfg.Cache.TTL(), logger)

	builder := prompts.NewBuilder(anonymizer.New(logger), logger)
	insights := services.NewInsightService(generator, builder, cacheManager, logger)

	logger.Info("Insight engine ready",
		zap.String("provider", generator.Provider()),
		zap.String("model", generator.GetModel()),
		zap.Duration("cache_ttl", cfg.Cache.TTL()))

	return &App{
		Config:    cfg,
		Generator: generator,
		Cache:     cacheManager,
		Insights:  insights,
		logger:    logger,
	}, nil
}

// LLMConfig maps the application config onto the provider client config.
func LLMConfig(cfg *config.Config) *llm.Config {
	c := &llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.ModelName(),
		APIKey:      cfg.APIKey(),
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout(),
		Retry: &retry.Config{
			MaxAttempts:  cfg.LLM.Retry.MaxAttempts,
			InitialDelay: time.Duration(cfg.LLM.Retry.InitialDelaySeconds) * time.Second,
			MaxDelay:     time.Duration(cfg.LLM.Retry.MaxDelaySeconds) * time.Second,
			Multiplier:   2,
		},
	}
	if cfg.LLM.Provider == llm.ProviderGroq {
		c.Endpoint = cfg.Groq.BaseURL
	}
	return c
}

// BreakerConfig maps the breaker settings.
func BreakerConfig(cfg *config.Config) llm.CircuitBreakerConfig {
	return llm.CircuitBreakerConfig{
		Threshold:  cfg.Breaker.Threshold,
		ResetAfter: time.Duration(cfg.Breaker.ResetAfterSeconds) * time.Second,
	}
}

func newCacheStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Store {
	memory := func() cache.Store {
		return cache.NewMemoryStore(cfg.Cache.MemorySize, cfg.Cache.TTL())
	}

	if cfg.Redis.Host == "" {
		logger.Info("Redis not configured, caching insights in memory",
			zap.Int("size", cfg.Cache.MemorySize))
		return memory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, &cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, caching insights in memory",
			zap.String("addr", logging.SanitizeRedisURL(cfg.Redis.Addr())),
			zap.Error(err))
		return memory()
	}

	logger.Info("Connected to Redis",
		zap.String("addr", logging.SanitizeRedisURL(cfg.Redis.Addr())),
		zap.Int("db", cfg.Redis.DB))
	return cache.NewRedisStore(client)
}

// Routes builds the HTTP surface: health, insights API, metrics and MCP.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.Config, a.Insights, a.logger).RegisterRoutes(mux)
	handlers.NewInsightsHandler(a.Insights, a.logger).RegisterRoutes(mux)
	handlers.RegisterMetricsRoute(mux)

	mcpServer := mcp.NewServer(a.Config.Version, a.logger)
	tools.RegisterHealthTool(mcpServer.MCP(), a.Config.Version, a.Generator.Provider(), a.Generator.GetModel())
	tools.RegisterInsightTools(mcpServer.MCP(), a.Insights, a.logger)
	handlers.NewMCPHandler(mcpServer, a.logger).RegisterRoutes(mux)

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.RequestLogger(a.logger),
	)
}

// Close releases the cache store.
func (a *App) Close() error {
	return a.Cache.Close()
}
