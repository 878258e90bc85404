package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

func profile(rows int64, cols int, score float64) *models.ProfileResult {
	return &models.ProfileResult{RowCount: rows, ColumnCount: cols, QualityScore: score}
}

func TestDatasetIntro(t *testing.T) {
	tests := []struct {
		rows int64
		want string
	}{
		{999, "This is a small dataset containing 999 rows and 3 columns."},
		{1_000, "This is a medium-sized dataset containing 1,000 rows and 3 columns."},
		{100_000, "This is a large dataset containing 100,000 rows and 3 columns."},
		{500_000, "This is a large dataset containing 500,000 rows and 3 columns."},
		{1_000_000, "This is a very large dataset containing 1,000,000 rows and 3 columns."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DatasetIntro(profile(tt.rows, 3, 80)))
	}
}

func TestQualityAssessment(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "Overall data quality is excellent (95/100)."},
		{80, "Overall data quality is very good (80/100)."},
		{72.5, "Overall data quality is good (72.5/100)."},
		{60, "Overall data quality is fair (60/100)."},
		{55, "Overall data quality is below average (55/100)."},
		{49.9, "Overall data quality is poor (49.9/100)."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QualityAssessment(profile(10, 1, tt.score)))
	}
}

func TestIssuesSummary(t *testing.T) {
	tests := []struct {
		name   string
		counts SeverityCounts
		want   string
	}{
		{"one critical", SeverityCounts{Critical: 1}, "There is 1 critical issue that requires immediate attention."},
		{"critical and warnings", SeverityCounts{Critical: 2, Warning: 3},
			"There are 2 critical issues that require immediate attention. Additionally, 3 warnings should be reviewed."},
		{"critical and one warning", SeverityCounts{Critical: 1, Warning: 1},
			"There is 1 critical issue that requires immediate attention. Additionally, 1 warning should be reviewed."},
		{"one warning", SeverityCounts{Warning: 1}, "There is 1 warning to review."},
		{"warnings", SeverityCounts{Warning: 4, Info: 2}, "There are 4 warnings to review."},
		{"info only", SeverityCounts{Info: 2},
			"No critical issues or warnings were detected. The analysis found 2 informational insights."},
		{"one info", SeverityCounts{Info: 1},
			"No critical issues or warnings were detected. The analysis found 1 informational insight."},
		{"nothing", SeverityCounts{}, "No issues were detected. The data appears to be in good condition."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IssuesSummary(tt.counts))
		})
	}
}

func TestConclusion(t *testing.T) {
	assert.True(t, strings.HasPrefix(Conclusion(90, SeverityCounts{Warning: 2}), "The data is ready for analysis"))
	assert.True(t, strings.HasPrefix(Conclusion(90, SeverityCounts{Critical: 1}), "Address the critical issues"))
	assert.True(t, strings.HasPrefix(Conclusion(70, SeverityCounts{Warning: 1}), "Review and address the warnings"))
	assert.True(t, strings.HasPrefix(Conclusion(70, SeverityCounts{Info: 3}), "The data is in good condition."))
}

func TestGenerator_Generate(t *testing.T) {
	g := New(zap.NewNop())
	insights := []models.CategorizedInsight{
		{Severity: models.SeverityInfo, Description: "Dates look fine", Priority: 1},
		{Severity: models.SeverityWarning, Description: "Outliers in revenue", Priority: 2},
		{Severity: models.SeverityCritical, Description: "Column 'email' is 60% missing", Priority: 2},
	}

	got := g.Generate(profile(500_000, 12, 55), insights)

	want := "This is a large dataset containing 500,000 rows and 12 columns. " +
		"Overall data quality is below average (55/100). " +
		"There is 1 critical issue that requires immediate attention. " +
		"Additionally, 1 warning should be reviewed. " +
		"The main concern is: Outliers in revenue " +
		"Address the critical issues before proceeding with analysis to ensure reliable results. " +
		"Review the detailed recommendations for specific actions to take."
	assert.Equal(t, want, got)
}

func TestGenerator_Generate_NoTopIssue(t *testing.T) {
	g := New(zap.NewNop())

	got := g.Generate(profile(50, 2, 92), nil)
	assert.NotContains(t, got, "The main concern")
	assert.NotContains(t, got, "most critical issue")
	assert.Contains(t, got, "No issues were detected.")
	assert.Contains(t, got, "ready for analysis")
}

func TestHighlight_Truncates(t *testing.T) {
	long := strings.Repeat("é", 200)
	got := highlight(models.CategorizedInsight{Severity: models.SeverityCritical, Description: long})

	prefix := "The most critical issue is: "
	assert.True(t, strings.HasPrefix(got, prefix))
	body := strings.TrimPrefix(got, prefix)
	assert.Equal(t, 150, len([]rune(body)))
	assert.True(t, strings.HasSuffix(body, "..."))

	short := highlight(models.CategorizedInsight{Severity: models.SeverityWarning, Description: "short"})
	assert.Equal(t, "The main concern is: short", short)
}

func TestShortSummary(t *testing.T) {
	assert.Equal(t, "12,000 rows × 8 columns | Quality: 72/100 (good condition)", ShortSummary(profile(12_000, 8, 72)))
	assert.Equal(t, "10 rows × 1 columns | Quality: 85/100 (excellent condition)", ShortSummary(profile(10, 1, 85)))
	assert.Equal(t, "10 rows × 1 columns | Quality: 50/100 (fair condition)", ShortSummary(profile(10, 1, 50)))
	assert.Equal(t, "10 rows × 1 columns | Quality: 12.5/100 (needs improvement)", ShortSummary(profile(10, 1, 12.5)))
}
