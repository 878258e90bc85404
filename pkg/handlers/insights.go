package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/codegen"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// AnalysisID accepts either a JSON string or a JSON number. Upstream
// analyses are numbered; other callers use opaque strings.
type AnalysisID string

func (id *AnalysisID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AnalysisID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("analysis_id must be a string or number")
	}
	*id = AnalysisID(n.String())
	return nil
}

// GenerateInsightsRequest for POST /api/v1/insights
type GenerateInsightsRequest struct {
	AnalysisID AnalysisID            `json:"analysis_id"`
	GoalType   models.GoalType       `json:"goal_type"`
	Profile    *models.ProfileResult `json:"profile"`
	Language   codegen.Language      `json:"language,omitempty"`
}

// InsightStatsResponse for GET /api/v1/insights/stats
type InsightStatsResponse struct {
	Tokens models.TokenStats  `json:"tokens"`
	Cache  *models.CacheStats `json:"cache,omitempty"`
}

// ClearCacheResponse for DELETE /api/v1/insights/cache
type ClearCacheResponse struct {
	Deleted int `json:"deleted"`
}

// ============================================================================
// Handler
// ============================================================================

// InsightsHandler serves the insight generation API.
type InsightsHandler struct {
	insightService services.InsightService
	logger         *zap.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(insightService services.InsightService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		insightService: insightService,
		logger:         logger,
	}
}

// RegisterRoutes registers the insights handler's routes on the given mux.
func (h *InsightsHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/v1/insights"

	mux.HandleFunc("POST "+base, h.Generate)
	mux.HandleFunc("GET "+base+"/stats", h.Stats)
	mux.HandleFunc("DELETE "+base+"/cache", h.ClearCache)
	mux.HandleFunc("DELETE "+base+"/cache/{key}", h.InvalidateCache)
}

// Generate handles POST /api/v1/insights
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateInsightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(string(req.AnalysisID)) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "analysis_id is required")
		return
	}
	if req.Profile == nil {
		h.writeError(w, http.StatusBadRequest, "invalid_profile", "profile is required")
		return
	}
	if req.Language != "" && !codegen.IsValidLanguage(req.Language) {
		h.writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("unsupported language %q", req.Language))
		return
	}
	if req.GoalType == "" {
		req.GoalType = models.GoalExploratory
	}

	result, err := h.insightService.GenerateInsights(r.Context(), &services.InsightRequest{
		AnalysisID: string(req.AnalysisID),
		Profile:    req.Profile,
		Goal:       req.GoalType,
		Language:   req.Language,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidProfile) {
			h.writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
			return
		}
		h.logger.Error("Failed to generate insights",
			zap.String("analysis_id", string(req.AnalysisID)),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "ai_service_error", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Stats handles GET /api/v1/insights/stats. Cache stats are omitted when
// the cache cannot be read.
func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := InsightStatsResponse{Tokens: h.insightService.TokenStats()}

	cacheStats, err := h.insightService.CacheStats(r.Context())
	if err != nil {
		h.logger.Warn("Failed to read cache stats", zap.Error(err))
	} else {
		response.Cache = &cacheStats
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// InvalidateCache handles DELETE /api/v1/insights/cache/{key}
func (h *InsightsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "cache key is required")
		return
	}

	if err := h.insightService.InvalidateCache(r.Context(), key); err != nil {
		h.logger.Error("Failed to invalidate cached insights", zap.String("key", key), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "cache_error", "Failed to invalidate cached insights")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCache handles DELETE /api/v1/insights/cache
func (h *InsightsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.insightService.ClearCache(r.Context())
	if err != nil {
		h.logger.Error("Failed to clear cached insights", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "cache_error", "Failed to clear cached insights")
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: ClearCacheResponse{Deleted: deleted}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *InsightsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
