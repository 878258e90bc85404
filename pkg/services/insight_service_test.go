package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/anonymizer"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/cache"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/codegen"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/llm"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/prompts"
)

const modelResponse = `CRITICAL: Column 'email' has 60% missing values | RECOMMENDATION: Impute or drop the email column
WARNING: Dataset contains 8% duplicate rows | RECOMMENDATION: Remove duplicate rows before training
INFO: Column 'age' looks normally distributed`

func customerProfile() *models.ProfileResult {
	return &models.ProfileResult{
		RowCount:     500000,
		ColumnCount:  12,
		QualityScore: 55,
		ColumnProfiles: []models.ColumnProfile{
			{ColumnName: "email", DataType: models.DataTypeText, SemanticType: models.SemanticTypeEmail, NullPercentage: 60},
			{ColumnName: "age", DataType: models.DataTypeNumeric, NullPercentage: 2},
			{ColumnName: "country", DataType: models.DataTypeCategorical, NullPercentage: 0},
		},
		QualityMetrics: &models.QualityMetrics{DuplicatePercentage: 8},
	}
}

func newTestService(t *testing.T, gen llm.TextGenerator, store cache.Store) (InsightService, *cache.Manager) {
	t.Helper()
	logger := zap.NewNop()
	if store == nil {
		store = cache.NewMemoryStore(64, time.Hour)
	}
	manager := cache.NewManager(store, "", time.Hour, logger)
	builder := prompts.NewBuilder(anonymizer.New(logger), logger)
	return NewInsightService(gen, builder, manager, logger), manager
}

func request() *InsightRequest {
	return &InsightRequest{
		AnalysisID: "42",
		Profile:    customerProfile(),
		Goal:       models.GoalMLPreparation,
	}
}

func TestGenerateInsights_ModelPath(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Response = modelResponse
	svc, _ := newTestService(t, mock, nil)

	result, err := svc.GenerateInsights(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, []Outcome{OutcomeMiss, OutcomeGenerateOk, OutcomeValidateOk, OutcomeParseOk}, result.Outcomes)
	require.Len(t, result.Insights, 4)

	summary := result.Insights[0]
	assert.Equal(t, models.SummaryPriority, summary.Priority)
	assert.Equal(t, models.SeverityInfo, summary.Severity)
	assert.Equal(t, models.InsightTypeQualityIssue, summary.Type)
	assert.Equal(t, models.ImpactLow, summary.Impact)
	assert.Empty(t, summary.Recommendation)
	assert.Nil(t, summary.CodeSuggestion)
	assert.Contains(t, summary.Description, "500,000 rows")

	critical := result.Insights[1]
	assert.Equal(t, models.SeverityCritical, critical.Severity)
	assert.Equal(t, models.InsightTypeMissingData, critical.Type)
	assert.Equal(t, []string{"email"}, critical.AffectedColumns)
	require.NotNil(t, critical.CodeSuggestion)
	assert.Contains(t, *critical.CodeSuggestion, "'email'")

	warning := result.Insights[2]
	assert.Equal(t, models.InsightTypeDuplicates, warning.Type)
	require.NotNil(t, warning.CodeSuggestion)

	info := result.Insights[3]
	assert.Equal(t, models.SeverityInfo, info.Severity)
	assert.Nil(t, info.CodeSuggestion, "info insights get no snippet")

	for i := 1; i < len(result.Insights); i++ {
		assert.LessOrEqual(t, result.Insights[i-1].Priority, result.Insights[i].Priority)
	}

	assert.Contains(t, mock.LastPrompt(), "500,000")
}

func TestGenerateInsights_CacheHit(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Response = modelResponse
	svc, _ := newTestService(t, mock, nil)
	ctx := context.Background()

	first, err := svc.GenerateInsights(ctx, request())
	require.NoError(t, err)

	second, err := svc.GenerateInsights(ctx, request())
	require.NoError(t, err)

	assert.Equal(t, 1, mock.GenerateCalls(), "second request must be served from cache")
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, []Outcome{OutcomeHit}, second.Outcomes)
	assert.Equal(t, first.Insights, second.Insights)
	assert.Equal(t, cache.Key("42", customerProfile()), second.CacheKey)

	stats, err := svc.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CachedInsightsCount)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 50.0, stats.HitRate)
}

func TestGenerateInsights_InvalidateCache(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Response = modelResponse
	svc, _ := newTestService(t, mock, nil)
	ctx := context.Background()

	result, err := svc.GenerateInsights(ctx, request())
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateCache(ctx, result.CacheKey))

	_, err = svc.GenerateInsights(ctx, request())
	require.NoError(t, err)
	assert.Equal(t, 2, mock.GenerateCalls())

	n, err := svc.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// A failing model on a 500,000-row dataset with quality 55, a 60% null
// email column and 8% duplicates yields three rule-based insights, each
// with a snippet.
func TestGenerateInsights_FallbackOnModelFailure(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(context.Context, string) (string, error) {
		return "", llm.NewError(llm.ErrorTypeRateLimit, "rate limit exceeded", true, nil)
	}
	svc, _ := newTestService(t, mock, nil)
	ctx := context.Background()

	result, err := svc.GenerateInsights(ctx, request())
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, []Outcome{OutcomeMiss, OutcomeGenerateFailed}, result.Outcomes)
	require.Len(t, result.Insights, 3)

	missing := result.Insights[0]
	assert.Equal(t, models.SeverityCritical, missing.Severity)
	assert.Equal(t, models.InsightTypeMissingData, missing.Type)
	assert.Equal(t, "Column 'email' has 60.0% missing values", missing.Description)
	assert.Equal(t, []string{"email"}, missing.AffectedColumns)

	dups := result.Insights[1]
	assert.Equal(t, models.SeverityWarning, dups.Severity)
	assert.Equal(t, models.InsightTypeDuplicates, dups.Type)

	quality := result.Insights[2]
	assert.Equal(t, models.SeverityWarning, quality.Severity)
	assert.Equal(t, models.InsightTypeQualityIssue, quality.Type)
	assert.Equal(t, "Data quality is below average (55/100). Address the issues before analysis.", quality.Description)

	for _, in := range result.Insights {
		require.NotNil(t, in.CodeSuggestion, "%s insight should carry a snippet", in.Type)
		assert.NotEmpty(t, *in.CodeSuggestion)
	}

	stats, err := svc.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CachedInsightsCount, "fallback output is not cached")
}

func TestGenerateInsights_FallbackOnUnusableResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		outcome  Outcome
	}{
		{"no severity markers", "The dataset looks reasonable overall.", OutcomeValidateFailed},
		{"too short", "INFO: ok", OutcomeValidateFailed},
		{"markers without content", "CRITICAL:\nWARNING:\nINFO:", OutcomeParseEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient()
			mock.Response = tt.response
			svc, _ := newTestService(t, mock, nil)

			result, err := svc.GenerateInsights(context.Background(), request())
			require.NoError(t, err)

			assert.Equal(t, SourceFallback, result.Source)
			assert.Equal(t, tt.outcome, result.Outcomes[len(result.Outcomes)-1])
			assert.NotEmpty(t, result.Insights)
			for _, in := range result.Insights {
				assert.NotEqual(t, models.SummaryPriority, in.Priority, "fallback output carries no summary")
			}
		})
	}
}

// A clean profile with an acceptable score fires no rule, yet the fallback
// still returns one informational insight.
func TestGenerateInsights_FallbackOnCleanProfile(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(context.Context, string) (string, error) {
		return "", llm.NewError(llm.ErrorTypeServer, "upstream unavailable", false, nil)
	}
	svc, _ := newTestService(t, mock, nil)

	req := &InsightRequest{
		AnalysisID: "7",
		Profile: &models.ProfileResult{
			RowCount:     1000,
			ColumnCount:  1,
			QualityScore: 75,
			ColumnProfiles: []models.ColumnProfile{
				{ColumnName: "id", DataType: models.DataTypeNumeric, NullPercentage: 1},
			},
		},
		Goal: models.GoalExploratory,
	}

	result, err := svc.GenerateInsights(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, []Outcome{OutcomeMiss, OutcomeGenerateFailed}, result.Outcomes)
	require.Len(t, result.Insights, 1)

	only := result.Insights[0]
	assert.Equal(t, models.SeverityInfo, only.Severity)
	assert.Equal(t, models.InsightTypeQualityIssue, only.Type)
	assert.Equal(t, "Data quality is acceptable (75/100). No rule-based issues were detected.", only.Description)
	assert.Equal(t, 5, only.Priority)
	assert.Equal(t, models.ImpactLow, only.Impact)
}

func TestGenerateInsights_SnippetLanguage(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}
	svc, _ := newTestService(t, mock, nil)

	req := request()
	req.Language = codegen.LanguageSQL

	result, err := svc.GenerateInsights(context.Background(), req)
	require.NoError(t, err)

	for _, in := range result.Insights {
		require.NotNil(t, in.CodeSuggestion)
		assert.True(t, strings.Contains(*in.CodeSuggestion, "SELECT"), "expected SQL for %s", in.Type)
	}
}

func TestGenerateInsights_CacheFailureDoesNotFail(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Response = modelResponse
	svc, _ := newTestService(t, mock, &brokenStore{err: errors.New("dial tcp 127.0.0.1:6379: connection refused")})

	result, err := svc.GenerateInsights(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, SourceModel, result.Source)
	assert.Len(t, result.Insights, 4)
}

func TestGenerateInsights_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, _ string) (string, error) {
		cancel()
		<-ctx.Done()
		return "", llm.ClassifyError(ctx.Err())
	}
	svc, _ := newTestService(t, mock, nil)

	result, err := svc.GenerateInsights(ctx, request())
	require.Error(t, err)
	assert.Nil(t, result, "cancellation never returns a partial list")
	assert.True(t, IsServiceError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateInsights_InvalidInput(t *testing.T) {
	mock := llm.NewMockClient()
	svc, _ := newTestService(t, mock, nil)

	bad := request()
	bad.Profile.QualityScore = 150

	_, err := svc.GenerateInsights(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidProfile)
	assert.True(t, IsServiceError(err))

	_, err = svc.GenerateInsights(context.Background(), &InsightRequest{AnalysisID: "1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidProfile)

	lang := request()
	lang.Language = "cobol"
	_, err = svc.GenerateInsights(context.Background(), lang)
	assert.True(t, IsServiceError(err))

	assert.Equal(t, 0, mock.GenerateCalls())
}

func TestTokenStats(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Stats = models.TokenStats{InputTokens: 100, OutputTokens: 50, TotalTokens: 150, EstimatedCostUSD: 0.01}
	svc, _ := newTestService(t, mock, nil)

	assert.Equal(t, mock.Stats, svc.TokenStats())
}

type brokenStore struct {
	err error
}

func (s *brokenStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return s.err
}
func (s *brokenStore) Delete(context.Context, ...string) error { return s.err }
func (s *brokenStore) Keys(context.Context, string) ([]string, error) { return nil, s.err }
func (s *brokenStore) HitStats(context.Context) (int64, int64, error) { return 0, 0, s.err }
func (s *brokenStore) Close() error { return nil }
