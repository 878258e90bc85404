package services

import (
	"fmt"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// Thresholds for rule-based insights.
const (
	fallbackNullPercent      = 50.0
	fallbackDuplicatePercent = 5.0
	fallbackOutlierPercent   = 10.0
	fallbackGoodQuality      = 85.0
	fallbackPoorQuality      = 70.0
)

// FallbackInsights derives insights from the profile alone, for when the
// model is unavailable or its output is unusable. Order: missing data per
// column, duplicates, outliers per column, then the overall quality note.
// A well-formed profile always yields at least one insight: when no rule
// fires, an acceptable-quality note is returned. Code snippets are attached
// separately.
func FallbackInsights(profile *models.ProfileResult) []models.CategorizedInsight {
	insights := make([]models.CategorizedInsight, 0)

	for _, col := range profile.ColumnProfiles {
		if col.NullPercentage > fallbackNullPercent {
			insights = append(insights, models.CategorizedInsight{
				Severity:        models.SeverityCritical,
				Type:            models.InsightTypeMissingData,
				Description:     fmt.Sprintf("Column '%s' has %.1f%% missing values", col.ColumnName, col.NullPercentage),
				Recommendation:  "Consider dropping this column or investigating the cause of missing data",
				Priority:        1,
				AffectedColumns: []string{col.ColumnName},
				Impact:          models.ImpactHigh,
			})
		}
	}

	if dup := profile.DuplicatePercentage(); dup > fallbackDuplicatePercent {
		insights = append(insights, models.CategorizedInsight{
			Severity:        models.SeverityWarning,
			Type:            models.InsightTypeDuplicates,
			Description:     fmt.Sprintf("Dataset contains %.1f%% duplicate rows", dup),
			Recommendation:  "Remove duplicate rows to improve data quality",
			Priority:        2,
			AffectedColumns: []string{},
			Impact:          models.ImpactHigh,
		})
	}

	for i := range profile.ColumnProfiles {
		col := &profile.ColumnProfiles[i]
		if pct := col.OutlierPercentage(); pct > fallbackOutlierPercent {
			insights = append(insights, models.CategorizedInsight{
				Severity:        models.SeverityWarning,
				Type:            models.InsightTypeOutliers,
				Description:     fmt.Sprintf("Column '%s' has %.1f%% outliers", col.ColumnName, pct),
				Recommendation:  "Review outliers to determine if they are errors or valid extreme values",
				Priority:        2,
				AffectedColumns: []string{col.ColumnName},
				Impact:          models.ImpactMedium,
			})
		}
	}

	score := models.FormatNumber(profile.QualityScore)
	switch {
	case profile.QualityScore >= fallbackGoodQuality:
		insights = append(insights, models.CategorizedInsight{
			Severity:        models.SeverityInfo,
			Type:            models.InsightTypeQualityIssue,
			Description:     fmt.Sprintf("Data quality is good (%s/100). The dataset is ready for analysis.", score),
			Priority:        5,
			AffectedColumns: []string{},
			Impact:          models.ImpactLow,
		})
	case profile.QualityScore < fallbackPoorQuality:
		insights = append(insights, models.CategorizedInsight{
			Severity:        models.SeverityWarning,
			Type:            models.InsightTypeQualityIssue,
			Description:     fmt.Sprintf("Data quality is below average (%s/100). Address the issues before analysis.", score),
			Recommendation:  "Review and fix the critical and warning issues identified",
			Priority:        2,
			AffectedColumns: []string{},
			Impact:          models.ImpactHigh,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, models.CategorizedInsight{
			Severity:        models.SeverityInfo,
			Type:            models.InsightTypeQualityIssue,
			Description:     fmt.Sprintf("Data quality is acceptable (%s/100). No rule-based issues were detected.", score),
			Priority:        5,
			AffectedColumns: []string{},
			Impact:          models.ImpactLow,
		})
	}

	return insights
}
