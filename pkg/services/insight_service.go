package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/cache"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/categorizer"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/codegen"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/llm"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/metrics"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/parser"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/prompts"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/story"
)

// InsightRequest asks for insights on one profiled dataset.
type InsightRequest struct {
	// AnalysisID identifies the analysis for cache keying.
	AnalysisID string
	Profile    *models.ProfileResult
	Goal       models.GoalType
	// Language of remediation snippets. Empty means Python.
	Language codegen.Language
}

// Source says which path produced an InsightResult.
type Source string

const (
	SourceCache    Source = "cache"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// InsightResult is the ordered insight list plus how it was produced.
type InsightResult struct {
	Insights []models.CategorizedInsight `json:"insights"`
	Source   Source                      `json:"source"`
	CacheKey string                      `json:"cache_key"`
	// Outcomes lists the pipeline transitions taken, in order.
	Outcomes []Outcome `json:"outcomes"`
}

// InsightService turns profiler output into prioritized, explained insights.
type InsightService interface {
	// GenerateInsights returns insights for the request. Model and parsing
	// failures fall back to rule-based insights; only orchestration failures
	// (invalid input, cancellation) return an *apperrors.AIServiceError.
	GenerateInsights(ctx context.Context, req *InsightRequest) (*InsightResult, error)

	// TokenStats returns accumulated model token usage.
	TokenStats() models.TokenStats

	// CacheStats returns cached entry count and hit rate.
	CacheStats(ctx context.Context) (models.CacheStats, error)

	// InvalidateCache removes the cached insights for one fingerprint.
	InvalidateCache(ctx context.Context, key string) error

	// ClearCache removes all cached insights and returns how many were removed.
	ClearCache(ctx context.Context) (int, error)
}

type insightService struct {
	generator   llm.TextGenerator
	builder     *prompts.Builder
	parser      *parser.Parser
	categorizer *categorizer.Categorizer
	codegen     *codegen.Generator
	story       *story.Generator
	cache       *cache.Manager
	logger      *zap.Logger
}

// NewInsightService creates the insight orchestrator.
func NewInsightService(
	generator llm.TextGenerator,
	builder *prompts.Builder,
	cacheManager *cache.Manager,
	logger *zap.Logger,
) InsightService {
	return &insightService{
		generator:   generator,
		builder:     builder,
		parser:      parser.New(logger),
		categorizer: categorizer.New(logger),
		codegen:     codegen.New(logger),
		story:       story.New(logger),
		cache:       cacheManager,
		logger:      logger.Named("insights"),
	}
}

var _ InsightService = (*insightService)(nil)

// GenerateInsights implements InsightService.
func (s *insightService) GenerateInsights(ctx context.Context, req *InsightRequest) (*InsightResult, error) {
	if req == nil {
		return nil, apperrors.NewAIServiceError(string(stageValidate), fmt.Errorf("%w: request is nil", apperrors.ErrInvalidProfile))
	}
	if err := req.Profile.Validate(); err != nil {
		return nil, apperrors.NewAIServiceError(string(stageValidate), fmt.Errorf("%w: %w", apperrors.ErrInvalidProfile, err))
	}

	lang := req.Language
	if lang == "" {
		lang = codegen.LanguagePython
	}
	if !codegen.IsValidLanguage(lang) {
		return nil, apperrors.NewAIServiceError(string(stageValidate), fmt.Errorf("unsupported snippet language %q", lang))
	}

	requestID := llm.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = llm.WithRequestID(ctx, requestID)
	}

	r := &run{
		svc:      s,
		req:      req,
		lang:     lang,
		cacheKey: cache.Key(req.AnalysisID, req.Profile),
		logger: s.logger.With(
			zap.String("request_id", requestID),
			zap.String("analysis_id", req.AnalysisID),
			zap.String("goal", string(req.Goal))),
	}

	start := time.Now()
	r.logger.Info("Generating insights",
		zap.Int64("rows", req.Profile.RowCount),
		zap.Int("columns", req.Profile.ColumnCount),
		zap.String("language", string(lang)))

	if err := r.execute(ctx); err != nil {
		r.logger.Error("Insight generation failed", zap.Error(err))
		return nil, err
	}

	metrics.RecordPipeline(string(r.source), time.Since(start))
	for _, in := range r.insights {
		metrics.RecordInsight(string(in.Severity))
	}

	r.logger.Info("Generated insights",
		zap.String("source", string(r.source)),
		zap.Int("insights", len(r.insights)),
		zap.Duration("elapsed", time.Since(start)))

	return &InsightResult{
		Insights: r.insights,
		Source:   r.source,
		CacheKey: r.cacheKey,
		Outcomes: r.outcomes,
	}, nil
}

// TokenStats implements InsightService.
func (s *insightService) TokenStats() models.TokenStats {
	return s.generator.TokenStats()
}

// CacheStats implements InsightService.
func (s *insightService) CacheStats(ctx context.Context) (models.CacheStats, error) {
	return s.cache.Stats(ctx)
}

// InvalidateCache implements InsightService.
func (s *insightService) InvalidateCache(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}

// ClearCache implements InsightService.
func (s *insightService) ClearCache(ctx context.Context) (int, error) {
	return s.cache.ClearAll(ctx)
}

// ============================================================================
// Pipeline state machine
// ============================================================================

type stage string

const (
	stageValidate   stage = "validate_input"
	stageCacheCheck stage = "cache_check"
	stagePrompt     stage = "prompt"
	stageGenerate   stage = "generate"
	stageCheck      stage = "validate_response"
	stageParse      stage = "parse"
	stageCategorize stage = "categorize"
	stageCodegen    stage = "codegen"
	stageSummarize  stage = "summarize"
	stageCacheWrite stage = "cache_write"
	stageFallback   stage = "fallback"
	stageDone       stage = "done"
)

// Outcome is the result of a pipeline step that decides the next stage.
type Outcome string

const (
	OutcomeHit            Outcome = "hit"
	OutcomeMiss           Outcome = "miss"
	OutcomeGenerateOk     Outcome = "generate_ok"
	OutcomeGenerateFailed Outcome = "generate_failed"
	OutcomeValidateOk     Outcome = "validate_ok"
	OutcomeValidateFailed Outcome = "validate_failed"
	OutcomeParseOk        Outcome = "parse_ok"
	OutcomeParseEmpty     Outcome = "parse_empty"
)

// run carries the state of one GenerateInsights call.
type run struct {
	svc      *insightService
	req      *InsightRequest
	lang     codegen.Language
	cacheKey string
	logger   *zap.Logger

	prompt   string
	response string
	raw      []models.RawInsight
	insights []models.CategorizedInsight
	source   Source
	outcomes []Outcome
}

func (r *run) record(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// execute drives the pipeline from the cache check to done. A cancelled
// context aborts between steps and inside the model call; nothing partial
// is returned.
func (r *run) execute(ctx context.Context) error {
	st := stageCacheCheck
	for st != stageDone {
		if err := ctx.Err(); err != nil {
			return apperrors.NewAIServiceError(string(st), err)
		}

		next, err := r.step(ctx, st)
		if err != nil {
			return apperrors.NewAIServiceError(string(st), err)
		}
		r.logger.Debug("Pipeline transition",
			zap.String("from", string(st)),
			zap.String("to", string(next)))
		st = next
	}
	return nil
}

func (r *run) step(ctx context.Context, st stage) (stage, error) {
	switch st {
	case stageCacheCheck:
		return r.checkCache(ctx), nil
	case stagePrompt:
		return r.buildPrompt()
	case stageGenerate:
		return r.generate(ctx)
	case stageCheck:
		return r.validateResponse(), nil
	case stageParse:
		return r.parse(), nil
	case stageCategorize:
		r.insights = r.svc.categorizer.Categorize(r.raw, r.req.Profile, r.req.Goal)
		return stageCodegen, nil
	case stageCodegen:
		r.attachCode()
		if r.source == SourceFallback {
			return stageDone, nil
		}
		return stageSummarize, nil
	case stageSummarize:
		r.summarize()
		return stageCacheWrite, nil
	case stageCacheWrite:
		r.writeCache(ctx)
		r.source = SourceModel
		return stageDone, nil
	case stageFallback:
		return r.fallback()
	}
	return stageDone, fmt.Errorf("unknown pipeline stage %q", st)
}

func (r *run) checkCache(ctx context.Context) stage {
	cached, ok, err := r.svc.cache.Get(ctx, r.cacheKey)
	switch {
	case err != nil:
		metrics.RecordCacheLookup(metrics.CacheError)
	case ok && len(cached) > 0:
		metrics.RecordCacheLookup(metrics.CacheHit)
		r.record(OutcomeHit)
		r.insights = cached
		r.source = SourceCache
		r.logger.Info("Cache hit", zap.String("cache_key", r.cacheKey))
		return stageDone
	default:
		metrics.RecordCacheLookup(metrics.CacheMiss)
	}

	r.record(OutcomeMiss)
	r.logger.Info("Cache miss", zap.String("cache_key", r.cacheKey))
	return stagePrompt
}

func (r *run) buildPrompt() (stage, error) {
	prompt, err := r.svc.builder.Build(r.req.Profile, r.req.Goal)
	if err != nil {
		return stageDone, fmt.Errorf("build prompt: %w", err)
	}
	r.prompt = prompt
	r.logger.Info("Built prompt", zap.Int("length", len(prompt)))
	return stageGenerate, nil
}

func (r *run) generate(ctx context.Context) (stage, error) {
	start := time.Now()
	response, err := r.svc.generator.Generate(ctx, r.prompt)
	metrics.RecordModelCall(r.svc.generator.Provider(), time.Since(start), err)

	if err != nil {
		// Cancellation is the caller's decision, not a provider failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stageDone, ctxErr
		}
		r.record(OutcomeGenerateFailed)
		r.logger.Warn("Model call failed, using fallback",
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.String("error", logging.SanitizeError(err)))
		return stageFallback, nil
	}

	r.record(OutcomeGenerateOk)
	r.response = response
	r.logger.Info("Received model response", zap.Int("length", len(response)))
	return stageCheck, nil
}

func (r *run) validateResponse() stage {
	if !parser.ValidateResponse(r.response) {
		r.record(OutcomeValidateFailed)
		r.logger.Warn("Model response has no severity markers, using fallback",
			zap.String("response", logging.TruncateString(r.response, 200)))
		return stageFallback
	}
	r.record(OutcomeValidateOk)
	return stageParse
}

func (r *run) parse() stage {
	r.raw = r.svc.parser.Parse(r.response)
	if len(r.raw) == 0 {
		r.record(OutcomeParseEmpty)
		r.logger.Warn("No insights parsed from model response, using fallback")
		return stageFallback
	}
	r.record(OutcomeParseOk)
	return stageCategorize
}

// attachCode adds remediation snippets to actionable insights. A failure on
// one insight leaves its snippet empty and does not affect the others.
func (r *run) attachCode() {
	for i := range r.insights {
		in := &r.insights[i]
		if !in.NeedsCode() {
			continue
		}
		code, ok := r.snippetFor(in)
		if ok {
			in.CodeSuggestion = &code
		} else {
			in.CodeSuggestion = nil
		}
	}
}

func (r *run) snippetFor(in *models.CategorizedInsight) (code string, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("Snippet generation panicked",
				zap.String("type", string(in.Type)),
				zap.Any("panic", p))
			code, ok = "", false
		}
	}()

	code, ok = r.svc.codegen.Generate(in, r.lang)
	// Every fallback insight carries a snippet, including the below-average
	// quality warning, which has no column-driven template of its own.
	if !ok && r.source == SourceFallback &&
		in.Type == models.InsightTypeQualityIssue && in.Severity == models.SeverityWarning {
		code, ok = codegen.QualityReview(r.lang)
	}
	return code, ok
}

// summarize prepends the executive summary. A failure drops the summary and
// keeps the insights.
func (r *run) summarize() {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("Summary generation panicked", zap.Any("panic", p))
		}
	}()

	summary := r.svc.story.Generate(r.req.Profile, r.insights)
	if summary == "" {
		return
	}
	r.insights = append([]models.CategorizedInsight{SummaryInsight(summary)}, r.insights...)
}

func (r *run) writeCache(ctx context.Context) {
	if err := r.svc.cache.Set(ctx, r.cacheKey, r.insights); err != nil {
		r.logger.Warn("Failed to cache insights", zap.String("error", logging.SanitizeError(err)))
	}
}

func (r *run) fallback() (next stage, err error) {
	defer func() {
		if p := recover(); p != nil {
			next, err = stageDone, fmt.Errorf("rule-based insights panicked: %v", p)
		}
	}()

	if n := len(r.outcomes); n > 0 {
		metrics.RecordFallback(string(r.outcomes[n-1]))
	}
	r.insights = FallbackInsights(r.req.Profile)
	r.source = SourceFallback
	r.logger.Info("Generated rule-based insights", zap.Int("insights", len(r.insights)))
	return stageCodegen, nil
}

// SummaryInsight wraps an executive summary as the leading insight.
func SummaryInsight(summary string) models.CategorizedInsight {
	return models.CategorizedInsight{
		Severity:        models.SeverityInfo,
		Type:            models.InsightTypeQualityIssue,
		Description:     summary,
		Recommendation:  "",
		Priority:        models.SummaryPriority,
		AffectedColumns: []string{},
		Impact:          models.ImpactLow,
	}
}

// IsServiceError reports whether err is an orchestration failure.
func IsServiceError(err error) bool {
	var svcErr *apperrors.AIServiceError
	return errors.As(err, &svcErr)
}
