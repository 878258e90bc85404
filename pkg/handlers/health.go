package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/config"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// ServiceName is reported by /ping.
const ServiceName = "data-nexa"

// cacheCheckTimeout bounds the cache probe in /health.
const cacheCheckTimeout = 2 * time.Second

// CacheStatter reports cache statistics. InsightService satisfies it.
type CacheStatter interface {
	CacheStats(ctx context.Context) (models.CacheStats, error)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Cache    string `json:"cache,omitempty"`
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	cache  CacheStatter
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil, in which
// case /health does not probe the cache.
func NewHealthHandler(cfg *config.Config, cache CacheStatter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, cache: cache, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health. An unreachable cache degrades the status but
// still answers 200: insights are generated without it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:   "ok",
		Provider: h.cfg.LLM.Provider,
		Model:    h.cfg.LLM.ModelName(),
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), cacheCheckTimeout)
		defer cancel()

		if _, err := h.cache.CacheStats(ctx); err != nil {
			h.logger.Warn("Cache health check failed", zap.Error(err))
			response.Status = "degraded"
			response.Cache = "unavailable"
		} else {
			response.Cache = "ok"
		}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     ServiceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
