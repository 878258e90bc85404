// Package story writes the plain-English executive summary of an analysis.
package story

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

const (
	maxHighlightLength = 150
	ellipsis           = "..."

	// readyQualityScore is the score at which a dataset without critical
	// issues is considered ready for analysis.
	readyQualityScore = 85
)

// threshold pairs a lower bound with the label used at or above it.
type threshold struct {
	min   float64
	label string
}

var sizeLabels = []threshold{
	{1_000_000, "very large"},
	{100_000, "large"},
	{1_000, "medium-sized"},
	{0, "small"},
}

var qualityLabels = []threshold{
	{90, "excellent"},
	{80, "very good"},
	{70, "good"},
	{60, "fair"},
	{50, "below average"},
}

var conditionLabels = []threshold{
	{85, "excellent condition"},
	{70, "good condition"},
	{50, "fair condition"},
}

func label(v float64, table []threshold, fallback string) string {
	for _, t := range table {
		if v >= t.min {
			return t.label
		}
	}
	return fallback
}

// Generator composes executive summaries.
type Generator struct {
	logger *zap.Logger
}

// New creates a Generator.
func New(logger *zap.Logger) *Generator {
	return &Generator{logger: logger.Named("story")}
}

// Generate returns a one-paragraph summary of the dataset and its insights.
// insights must already be in priority order.
func (g *Generator) Generate(profile *models.ProfileResult, insights []models.CategorizedInsight) string {
	counts := countBySeverity(insights)

	parts := []string{
		DatasetIntro(profile),
		QualityAssessment(profile),
		IssuesSummary(counts),
	}
	if top, ok := topIssue(insights); ok {
		parts = append(parts, highlight(top))
	}
	parts = append(parts, Conclusion(profile.QualityScore, counts))

	summary := strings.Join(parts, " ")
	g.logger.Debug("Generated executive summary", zap.Int("length", len(summary)))
	return summary
}

// ShortSummary returns a one-line overview such as
// "12,000 rows × 8 columns | Quality: 72/100 (good condition)".
func ShortSummary(profile *models.ProfileResult) string {
	return fmt.Sprintf("%s rows × %d columns | Quality: %s/100 (%s)",
		humanize.Comma(profile.RowCount),
		profile.ColumnCount,
		models.FormatNumber(profile.QualityScore),
		label(profile.QualityScore, conditionLabels, "needs improvement"))
}

// DatasetIntro describes the dataset size.
func DatasetIntro(profile *models.ProfileResult) string {
	return fmt.Sprintf("This is a %s dataset containing %s rows and %d columns.",
		label(float64(profile.RowCount), sizeLabels, "small"),
		humanize.Comma(profile.RowCount),
		profile.ColumnCount)
}

// QualityAssessment describes the overall quality score.
func QualityAssessment(profile *models.ProfileResult) string {
	return fmt.Sprintf("Overall data quality is %s (%s/100).",
		label(profile.QualityScore, qualityLabels, "poor"),
		models.FormatNumber(profile.QualityScore))
}

// SeverityCounts tallies insights per severity.
type SeverityCounts struct {
	Critical int
	Warning  int
	Info     int
}

func countBySeverity(insights []models.CategorizedInsight) SeverityCounts {
	var c SeverityCounts
	for i := range insights {
		switch insights[i].Severity {
		case models.SeverityCritical:
			c.Critical++
		case models.SeverityWarning:
			c.Warning++
		case models.SeverityInfo:
			c.Info++
		}
	}
	return c
}

// IssuesSummary states how many issues of each severity were found.
func IssuesSummary(c SeverityCounts) string {
	var parts []string

	switch {
	case c.Critical == 1:
		parts = append(parts, "There is 1 critical issue that requires immediate attention.")
	case c.Critical > 1:
		parts = append(parts, fmt.Sprintf("There are %d critical issues that require immediate attention.", c.Critical))
	}

	if c.Warning > 0 {
		if c.Critical > 0 {
			parts = append(parts, fmt.Sprintf("Additionally, %s should be reviewed.", counted(c.Warning, "warning")))
		} else {
			parts = append(parts, fmt.Sprintf("There %s %s to review.", verb(c.Warning), counted(c.Warning, "warning")))
		}
	}

	if c.Critical == 0 && c.Warning == 0 {
		if c.Info > 0 {
			parts = append(parts, fmt.Sprintf(
				"No critical issues or warnings were detected. The analysis found %s.",
				counted(c.Info, "informational insight")))
		} else {
			parts = append(parts, "No issues were detected. The data appears to be in good condition.")
		}
	}

	return strings.Join(parts, " ")
}

// Conclusion recommends the next step.
func Conclusion(qualityScore float64, c SeverityCounts) string {
	switch {
	case qualityScore >= readyQualityScore && c.Critical == 0:
		return "The data is ready for analysis with minimal preprocessing required. " +
			"Consider reviewing the recommendations to further optimize data quality."
	case c.Critical > 0:
		return "Address the critical issues before proceeding with analysis to ensure reliable results. " +
			"Review the detailed recommendations for specific actions to take."
	case c.Warning > 0:
		return "Review and address the warnings to improve data quality. " +
			"The data can be used for analysis, but addressing these issues will improve results."
	default:
		return "The data is in good condition. " +
			"Review the insights for opportunities to enhance data quality."
	}
}

func topIssue(insights []models.CategorizedInsight) (models.CategorizedInsight, bool) {
	for _, in := range insights {
		if in.Severity == models.SeverityCritical || in.Severity == models.SeverityWarning {
			return in, true
		}
	}
	return models.CategorizedInsight{}, false
}

func highlight(in models.CategorizedInsight) string {
	subject := "main concern"
	if in.Severity == models.SeverityCritical {
		subject = "most critical issue"
	}
	return fmt.Sprintf("The %s is: %s", subject, truncate(in.Description))
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxHighlightLength {
		return s
	}
	return string(runes[:maxHighlightLength-len(ellipsis)]) + ellipsis
}

// counted renders "1 warning" or "3 warnings".
func counted(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}

func verb(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}
