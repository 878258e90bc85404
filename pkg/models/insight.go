package models

import "slices"

// ============================================================================
// Severity, type and impact
// ============================================================================

// Severity of an insight as emitted by the model or the rule engine.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ValidSeverities lists severities in descending order of urgency.
var ValidSeverities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// IsValidSeverity reports whether s is a known severity.
func IsValidSeverity(s Severity) bool {
	return slices.Contains(ValidSeverities, s)
}

// InsightType classifies what kind of data-quality problem an insight describes.
type InsightType string

const (
	InsightTypeMissingData      InsightType = "missing_data"
	InsightTypeDuplicates       InsightType = "duplicates"
	InsightTypeOutliers         InsightType = "outliers"
	InsightTypeDataTypeMismatch InsightType = "data_type_mismatch"
	InsightTypePatternViolation InsightType = "pattern_violation"
	InsightTypeQualityIssue     InsightType = "quality_issue"
)

// ValidInsightTypes contains all valid insight type values.
var ValidInsightTypes = []InsightType{
	InsightTypeMissingData,
	InsightTypeDuplicates,
	InsightTypeOutliers,
	InsightTypeDataTypeMismatch,
	InsightTypePatternViolation,
	InsightTypeQualityIssue,
}

// IsValidInsightType reports whether t is a known insight type.
func IsValidInsightType(t InsightType) bool {
	return slices.Contains(ValidInsightTypes, t)
}

// Impact estimates how much an issue affects downstream use of the data.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// GoalType is the user's stated purpose for the dataset. It selects the
// prompt template and adjusts priorities.
type GoalType string

const (
	GoalMLPreparation     GoalType = "ml_preparation"
	GoalBusinessReporting GoalType = "business_reporting"
	GoalAnomalyDetection  GoalType = "anomaly_detection"
	GoalDataQuality       GoalType = "data_quality"
	GoalExploratory       GoalType = "exploratory"
)

// ============================================================================
// Insights
// ============================================================================

// RawInsight is one parsed line of model output before categorization.
type RawInsight struct {
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// SummaryPriority is the priority of the synthetic executive-summary insight
// placed ahead of all categorized insights.
const SummaryPriority = 0

// CategorizedInsight is the unit of output returned to callers and cached.
type CategorizedInsight struct {
	Severity        Severity    `json:"severity"`
	Type            InsightType `json:"type"`
	Description     string      `json:"description"`
	Recommendation  string      `json:"recommendation"`
	Priority        int         `json:"priority"`
	AffectedColumns []string    `json:"affected_columns"`
	Impact          Impact      `json:"impact"`
	CodeSuggestion  *string     `json:"code_suggestion"`
}

// NeedsCode reports whether a remediation snippet should be generated.
func (i *CategorizedInsight) NeedsCode() bool {
	return i.Recommendation != "" &&
		(i.Severity == SeverityCritical || i.Severity == SeverityWarning)
}

// ============================================================================
// Observability
// ============================================================================

// TokenStats is a snapshot of accumulated model token usage.
type TokenStats struct {
	InputTokens      int64   `json:"input_tokens"`
	OutputTokens     int64   `json:"output_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// CacheStats is a snapshot of insight cache usage. HitRate is a percentage.
type CacheStats struct {
	CachedInsightsCount int     `json:"cached_insights_count"`
	Hits                int64   `json:"hits"`
	Misses              int64   `json:"misses"`
	HitRate             float64 `json:"hit_rate"`
}
