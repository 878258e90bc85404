package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/codegen"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/services"
)

var goalValues = []string{
	string(models.GoalMLPreparation),
	string(models.GoalBusinessReporting),
	string(models.GoalAnomalyDetection),
	string(models.GoalDataQuality),
	string(models.GoalExploratory),
}

// RegisterInsightTools adds generate_insights, token_stats and cache_stats.
func RegisterInsightTools(s *server.MCPServer, svc services.InsightService, logger *zap.Logger) {
	logger = logger.Named("mcp.tools")
	registerGenerateInsightsTool(s, svc, logger)
	registerTokenStatsTool(s, svc)
	registerCacheStatsTool(s, svc)
}

func registerGenerateInsightsTool(s *server.MCPServer, svc services.InsightService, logger *zap.Logger) {
	languages := make([]string, len(codegen.ValidLanguages))
	for i, l := range codegen.ValidLanguages {
		languages[i] = string(l)
	}

	tool := mcp.NewTool(
		"generate_insights",
		mcp.WithDescription(
			"Generate prioritized data-quality insights for a profiled dataset. "+
				"Each actionable insight includes a remediation snippet. "+
				"Results are cached per analysis and dataset shape."),
		mcp.WithString("analysis_id",
			mcp.Required(),
			mcp.Description("Identifier of the analysis, used for caching")),
		mcp.WithString("goal",
			mcp.Required(),
			mcp.Enum(goalValues...),
			mcp.Description("What the dataset will be used for")),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Profiler output as a JSON object with row_count, column_count, quality_score, column_profiles and quality_metrics")),
		mcp.WithString("language",
			mcp.Enum(languages...),
			mcp.Description("Language of remediation snippets (default python)")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		analysisID, err := req.RequireString("analysis_id")
		if err != nil {
			return NewErrorResult("invalid_arguments", err.Error()), nil
		}
		if analysisID = strings.TrimSpace(analysisID); analysisID == "" {
			return NewErrorResult("invalid_arguments", "analysis_id must not be empty"), nil
		}
		goal, err := req.RequireString("goal")
		if err != nil {
			return NewErrorResult("invalid_arguments", err.Error()), nil
		}
		rawProfile, err := req.RequireString("profile")
		if err != nil {
			return NewErrorResult("invalid_arguments", err.Error()), nil
		}

		var profile models.ProfileResult
		if err := json.Unmarshal([]byte(rawProfile), &profile); err != nil {
			return NewErrorResult("invalid_profile", fmt.Sprintf("profile is not valid JSON: %v", err)), nil
		}

		lang := codegen.Language(req.GetString("language", ""))
		if lang != "" && !codegen.IsValidLanguage(lang) {
			return NewErrorResultWithDetails("invalid_arguments",
				fmt.Sprintf("unsupported language %q", lang),
				map[string]any{"valid_languages": languages}), nil
		}

		result, err := svc.GenerateInsights(ctx, &services.InsightRequest{
			AnalysisID: analysisID,
			Profile:    &profile,
			Goal:       models.GoalType(goal),
			Language:   lang,
		})
		if errors.Is(err, apperrors.ErrInvalidProfile) {
			return NewErrorResult("invalid_profile", err.Error()), nil
		}
		if err != nil {
			logger.Error("generate_insights failed", zap.String("analysis_id", analysisID), zap.Error(err))
			return nil, err
		}

		return jsonResult(result)
	})
}

func registerTokenStatsTool(s *server.MCPServer, svc services.InsightService) {
	tool := mcp.NewTool(
		"token_stats",
		mcp.WithDescription("Returns accumulated model token usage and estimated cost in USD"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(svc.TokenStats())
	})
}

func registerCacheStatsTool(s *server.MCPServer, svc services.InsightService) {
	tool := mcp.NewTool(
		"cache_stats",
		mcp.WithDescription("Returns the number of cached insight sets and the cache hit rate"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.CacheStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read cache stats: %w", err)
		}
		return jsonResult(stats)
	})
}
