// Package anonymizer summarizes column profiles so that no raw cell values
// leave the process when a prompt is sent to a model provider.
package anonymizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// ColumnSummary is the redacted view of one column.
type ColumnSummary struct {
	Name           string          `json:"name"`
	Type           models.DataType `json:"type"`
	Sample         string          `json:"sample"`
	Note           string          `json:"note,omitempty"`
	NullPercentage float64         `json:"null_percentage"`
}

// Anonymizer redacts column profiles and single values.
type Anonymizer struct {
	logger *zap.Logger
}

// New creates an Anonymizer.
func New(logger *zap.Logger) *Anonymizer {
	return &Anonymizer{logger: logger.Named("anonymizer")}
}

// Summarize maps each column to its redacted summary, preserving order.
func (a *Anonymizer) Summarize(columns []models.ColumnProfile) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(columns))
	for i := range columns {
		out = append(out, summarizeColumn(&columns[i]))
	}
	return out
}

// Anonymize returns the redacted summaries as indented JSON.
func (a *Anonymizer) Anonymize(columns []models.ColumnProfile) (string, error) {
	summaries := a.Summarize(columns)

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode anonymized columns: %w", err)
	}

	a.logger.Debug("Anonymized columns", zap.Int("count", len(summaries)))
	return string(data), nil
}

func summarizeColumn(c *models.ColumnProfile) ColumnSummary {
	s := ColumnSummary{
		Name:           c.ColumnName,
		Type:           c.DataType,
		NullPercentage: math.Round(c.NullPercentage*100) / 100,
	}

	switch c.SemanticType {
	case models.SemanticTypeEmail:
		s.Sample, s.Note = "user***@domain.com", "Email addresses detected"
		return s
	case models.SemanticTypePhone:
		s.Sample, s.Note = "***-***-1234", "Phone numbers detected"
		return s
	case models.SemanticTypeIdentifier:
		s.Sample, s.Note = "ID_***", "Unique identifiers detected"
		return s
	}

	switch c.DataType {
	case models.DataTypeNumeric:
		stats, ok := c.Statistics.(models.NumericStats)
		if !ok {
			s.Sample = "[numeric data]"
			break
		}
		s.Sample = fmt.Sprintf("Range: %s - %s", formatOptional(stats.Min), formatOptional(stats.Max))
		s.Note = "Numeric values"

	case models.DataTypeCategorical:
		stats, ok := c.Statistics.(models.CategoricalStats)
		if !ok || stats.TopValues == nil {
			s.Sample = "[categorical data]"
			break
		}
		s.Sample = fmt.Sprintf("%d categories", min(3, len(stats.TopValues)))
		s.Note = fmt.Sprintf("%d unique values", stats.UniqueCount)

	case models.DataTypeDatetime:
		stats, ok := c.Statistics.(models.DatetimeStats)
		if !ok {
			s.Sample = "[datetime data]"
			break
		}
		s.Sample = fmt.Sprintf("Date range: %s to %s", orNA(stats.MinDate), orNA(stats.MaxDate))
		s.Note = "Temporal data"

	case models.DataTypeText:
		stats, ok := c.Statistics.(models.TextStats)
		if !ok {
			s.Sample = "[text data]"
			break
		}
		s.Sample = fmt.Sprintf("Text (avg length: %s chars)", formatOptional(stats.AvgLength))
		s.Note = "Text data"

	default:
		s.Sample = "[anonymized]"
	}

	return s
}

// AnonymizeValue redacts a single value according to its semantic type.
// Emails keep the first two characters of the user and the domain, phones
// keep the last four digits, identifiers and everything else are masked.
func AnonymizeValue(value string, kind models.SemanticType) string {
	switch kind {
	case models.SemanticTypeEmail:
		parts := strings.Split(value, "@")
		if len(parts) < 2 {
			return "***@domain.com"
		}
		user := []rune(parts[0])
		if len(user) > 2 {
			user = user[:2]
		}
		return string(user) + "***@" + parts[1]

	case models.SemanticTypePhone:
		var digits []rune
		for _, r := range value {
			if unicode.IsDigit(r) {
				digits = append(digits, r)
			}
		}
		if len(digits) < 4 {
			return "***-***-****"
		}
		return "***-***-" + string(digits[len(digits)-4:])

	case models.SemanticTypeIdentifier:
		return "ID_***"
	}

	return "***"
}

func formatOptional(v *float64) string {
	if v == nil {
		return "0"
	}
	return models.FormatNumber(*v)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
