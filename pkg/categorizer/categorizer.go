// Package categorizer assigns type, priority, impact and affected columns to
// parsed insights. Output is deterministic for a given input and goal.
package categorizer

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// Priority bounds. 1 is the most urgent.
const (
	HighestPriority = 1
	LowestPriority  = 5

	defaultPriority = 3
)

// keywordGroup maps description keywords to an insight type. Groups are
// checked in order and the first group with a matching keyword wins.
type keywordGroup struct {
	keywords []string
	typ      models.InsightType
}

var typeKeywords = []keywordGroup{
	{[]string{"missing", "null", "empty", "blank"}, models.InsightTypeMissingData},
	{[]string{"duplicate", "repeated"}, models.InsightTypeDuplicates},
	{[]string{"outlier", "anomal"}, models.InsightTypeOutliers},
	{[]string{"type", "mismatch", "inconsistent type"}, models.InsightTypeDataTypeMismatch},
	{[]string{"pattern", "format", "structure"}, models.InsightTypePatternViolation},
	{[]string{"correlation", "multicollinearity", "related"}, models.InsightTypeQualityIssue},
	{[]string{"cardinality", "unique", "distinct"}, models.InsightTypeQualityIssue},
}

var basePriority = map[models.Severity]int{
	models.SeverityCritical: 1,
	models.SeverityWarning:  2,
	models.SeverityInfo:     5,
}

// goalBoosts lists the insight types each goal cares most about. Matching
// insights are promoted by one priority level.
var goalBoosts = map[models.GoalType][]models.InsightType{
	models.GoalMLPreparation: {
		models.InsightTypeMissingData,
		models.InsightTypeDuplicates,
		models.InsightTypeOutliers,
	},
	models.GoalBusinessReporting: {
		models.InsightTypePatternViolation,
		models.InsightTypeDataTypeMismatch,
	},
	models.GoalAnomalyDetection: {
		models.InsightTypeOutliers,
	},
}

// Categorizer classifies and ranks raw insights.
type Categorizer struct {
	logger *zap.Logger
}

// New creates a Categorizer.
func New(logger *zap.Logger) *Categorizer {
	return &Categorizer{logger: logger.Named("categorizer")}
}

// Categorize converts raw insights into categorized insights sorted by
// priority, then severity name. Insights with equal keys keep their input
// order. CodeSuggestion is left nil.
func (c *Categorizer) Categorize(raw []models.RawInsight, profile *models.ProfileResult, goal models.GoalType) []models.CategorizedInsight {
	out := make([]models.CategorizedInsight, 0, len(raw))

	for _, r := range raw {
		typ := DetectType(r.Description)
		out = append(out, models.CategorizedInsight{
			Severity:        r.Severity,
			Type:            typ,
			Description:     r.Description,
			Recommendation:  r.Recommendation,
			Priority:        Priority(r.Severity, typ, goal),
			AffectedColumns: AffectedColumns(r.Description, profile),
			Impact:          DetermineImpact(r.Severity, typ),
		})
	}

	slices.SortStableFunc(out, func(a, b models.CategorizedInsight) int {
		return cmp.Or(
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(a.Severity, b.Severity),
		)
	})

	c.logger.Info("Categorized insights",
		zap.String("goal", string(goal)),
		zap.Int("critical", countSeverity(out, models.SeverityCritical)),
		zap.Int("warning", countSeverity(out, models.SeverityWarning)),
		zap.Int("info", countSeverity(out, models.SeverityInfo)))

	return out
}

// DetectType infers the insight type from keywords in the description.
func DetectType(description string) models.InsightType {
	lower := strings.ToLower(description)
	for _, group := range typeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.typ
			}
		}
	}
	return models.InsightTypeQualityIssue
}

// Priority computes the 1-5 priority for an insight. Severity sets the base
// and the goal may promote the insight by one level, never above 1.
func Priority(severity models.Severity, typ models.InsightType, goal models.GoalType) int {
	p, ok := basePriority[severity]
	if !ok {
		p = defaultPriority
	}
	if slices.Contains(goalBoosts[goal], typ) {
		p = max(HighestPriority, p-1)
	}
	return p
}

// DetermineImpact estimates the impact level of an insight.
func DetermineImpact(severity models.Severity, typ models.InsightType) models.Impact {
	switch severity {
	case models.SeverityCritical:
		return models.ImpactHigh
	case models.SeverityWarning:
		if typ == models.InsightTypeMissingData || typ == models.InsightTypeDuplicates {
			return models.ImpactHigh
		}
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

// AffectedColumns returns the profile columns mentioned in the description,
// either quoted or as a space-delimited word, in profile order.
func AffectedColumns(description string, profile *models.ProfileResult) []string {
	columns := make([]string, 0)
	if profile == nil {
		return columns
	}

	padded := " " + description + " "
	for _, col := range profile.ColumnProfiles {
		name := col.ColumnName
		if name == "" {
			continue
		}
		if strings.Contains(description, "'"+name+"'") ||
			strings.Contains(description, `"`+name+`"`) ||
			strings.Contains(padded, " "+name+" ") {
			columns = append(columns, name)
		}
	}
	return columns
}

func countSeverity(insights []models.CategorizedInsight, severity models.Severity) int {
	n := 0
	for i := range insights {
		if insights[i].Severity == severity {
			n++
		}
	}
	return n
}
