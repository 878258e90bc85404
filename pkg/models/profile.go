package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/jsonutil"
)

// DataType is the storage type the profiler inferred for a column.
type DataType string

const (
	DataTypeNumeric     DataType = "numeric"
	DataTypeCategorical DataType = "categorical"
	DataTypeDatetime    DataType = "datetime"
	DataTypeText        DataType = "text"
	DataTypeOther       DataType = "other"
)

// SemanticType is the meaning the profiler inferred for a column's values.
// Values other than the constants below are allowed and treated as none.
type SemanticType string

const (
	SemanticTypeEmail      SemanticType = "email"
	SemanticTypePhone      SemanticType = "phone"
	SemanticTypeIdentifier SemanticType = "identifier"
	SemanticTypeNone       SemanticType = "none"
)

// ============================================================================
// Column statistics (tagged by DataType)
// ============================================================================

// Statistics is the per-type statistics block of a column profile.
// The concrete type always matches the column's DataType.
type Statistics interface {
	Kind() DataType
}

// NumericStats holds the range of a numeric column.
// Nil fields mean the profiler did not report the bound.
type NumericStats struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (NumericStats) Kind() DataType { return DataTypeNumeric }

// CategoricalStats holds category information for a categorical column.
// TopValues is nil when the profiler omitted top_values entirely and empty
// (non-nil) when it reported an empty list.
type CategoricalStats struct {
	TopValues   []string `json:"top_values"`
	UniqueCount int      `json:"unique_count"`
}

func (CategoricalStats) Kind() DataType { return DataTypeCategorical }

// DatetimeStats holds the observed date range.
type DatetimeStats struct {
	MinDate string `json:"min_date,omitempty"`
	MaxDate string `json:"max_date,omitempty"`
}

func (DatetimeStats) Kind() DataType { return DataTypeDatetime }

// TextStats holds text length information.
type TextStats struct {
	AvgLength *float64 `json:"avg_length,omitempty"`
}

func (TextStats) Kind() DataType { return DataTypeText }

// OutlierStats is the optional outlier summary of a column.
type OutlierStats struct {
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// ============================================================================
// Column and dataset profiles
// ============================================================================

// ColumnProfile describes one column of the profiled dataset.
type ColumnProfile struct {
	ColumnName     string        `json:"column_name" validate:"required"`
	DataType       DataType      `json:"data_type" validate:"required"`
	SemanticType   SemanticType  `json:"semantic_type,omitempty"`
	NullPercentage float64       `json:"null_percentage" validate:"gte=0,lte=100"`
	Statistics     Statistics    `json:"-"`
	Outliers       *OutlierStats `json:"outliers,omitempty"`
}

// OutlierPercentage returns the outlier percentage, or 0 when the profiler
// reported no outlier block.
func (c *ColumnProfile) OutlierPercentage() float64 {
	if c.Outliers == nil {
		return 0
	}
	return c.Outliers.Percentage
}

// QualityMetrics holds dataset-wide quality measurements.
type QualityMetrics struct {
	DuplicatePercentage float64                       `json:"duplicate_percentage" validate:"gte=0,lte=100"`
	CorrelationMatrix   map[string]map[string]float64 `json:"correlation_matrix,omitempty"`
}

// ProfileResult is the profiler output consumed by the insight pipeline.
type ProfileResult struct {
	RowCount       int64           `json:"row_count" validate:"gte=0"`
	ColumnCount    int             `json:"column_count" validate:"gte=0"`
	QualityScore   float64         `json:"quality_score" validate:"gte=0,lte=100"`
	ColumnProfiles []ColumnProfile `json:"column_profiles" validate:"dive"`
	QualityMetrics *QualityMetrics `json:"quality_metrics,omitempty"`
}

// DuplicatePercentage returns the duplicate row percentage, or 0 when no
// quality metrics were reported.
func (p *ProfileResult) DuplicatePercentage() float64 {
	if p.QualityMetrics == nil {
		return 0
	}
	return p.QualityMetrics.DuplicatePercentage
}

// ColumnNames returns the column names in profile order.
func (p *ProfileResult) ColumnNames() []string {
	names := make([]string, len(p.ColumnProfiles))
	for i, c := range p.ColumnProfiles {
		names[i] = c.ColumnName
	}
	return names
}

var profileValidate = validator.New()

// Validate checks the structural constraints of the profile.
func (p *ProfileResult) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if err := profileValidate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// FormatNumber renders a float the way the profiler reports it: integral
// values without a fractional part, everything else in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ============================================================================
// JSON
// ============================================================================

type columnProfileJSON struct {
	ColumnName     string          `json:"column_name"`
	DataType       DataType        `json:"data_type"`
	SemanticType   SemanticType    `json:"semantic_type,omitempty"`
	NullPercentage float64         `json:"null_percentage"`
	Statistics     json.RawMessage `json:"statistics,omitempty"`
	Outliers       *OutlierStats   `json:"outliers,omitempty"`
}

// UnmarshalJSON decodes the statistics block according to data_type.
func (c *ColumnProfile) UnmarshalJSON(data []byte) error {
	var raw columnProfileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ColumnName = raw.ColumnName
	c.DataType = raw.DataType
	c.SemanticType = raw.SemanticType
	c.NullPercentage = raw.NullPercentage
	c.Outliers = raw.Outliers
	c.Statistics = nil

	if len(raw.Statistics) == 0 || string(raw.Statistics) == "null" {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw.Statistics, &fields); err != nil {
		return fmt.Errorf("column %q: statistics: %w", raw.ColumnName, err)
	}
	if len(fields) == 0 {
		return nil
	}

	stats, err := decodeStatistics(raw.DataType, fields)
	if err != nil {
		return fmt.Errorf("column %q: statistics: %w", raw.ColumnName, err)
	}
	c.Statistics = stats
	return nil
}

// MarshalJSON writes the statistics block back in the profiler's shape.
func (c ColumnProfile) MarshalJSON() ([]byte, error) {
	out := struct {
		ColumnName     string        `json:"column_name"`
		DataType       DataType      `json:"data_type"`
		SemanticType   SemanticType  `json:"semantic_type,omitempty"`
		NullPercentage float64       `json:"null_percentage"`
		Statistics     Statistics    `json:"statistics,omitempty"`
		Outliers       *OutlierStats `json:"outliers,omitempty"`
	}{
		ColumnName:     c.ColumnName,
		DataType:       c.DataType,
		SemanticType:   c.SemanticType,
		NullPercentage: c.NullPercentage,
		Statistics:     c.Statistics,
		Outliers:       c.Outliers,
	}
	return json.Marshal(out)
}

func decodeStatistics(dataType DataType, fields map[string]json.RawMessage) (Statistics, error) {
	switch dataType {
	case DataTypeNumeric:
		var s NumericStats
		if v, ok := jsonutil.FlexibleFloat(fields["min"]); ok {
			s.Min = &v
		}
		if v, ok := jsonutil.FlexibleFloat(fields["max"]); ok {
			s.Max = &v
		}
		return s, nil

	case DataTypeCategorical:
		var s CategoricalStats
		if raw, ok := fields["top_values"]; ok {
			s.TopValues = topValues(raw)
		}
		if v, ok := jsonutil.FlexibleFloat(fields["unique_count"]); ok {
			s.UniqueCount = int(v)
		}
		return s, nil

	case DataTypeDatetime:
		return DatetimeStats{
			MinDate: jsonutil.FlexibleStringValue(fields["min_date"]),
			MaxDate: jsonutil.FlexibleStringValue(fields["max_date"]),
		}, nil

	case DataTypeText:
		var s TextStats
		if v, ok := jsonutil.FlexibleFloat(fields["avg_length"]); ok {
			s.AvgLength = &v
		}
		return s, nil
	}

	// Other data types carry no statistics the pipeline reads.
	return nil, nil
}

// topValues accepts either a list of values or a value->count object.
func topValues(raw json.RawMessage) []string {
	if string(raw) == "null" {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		values := make([]string, 0, len(list))
		for _, item := range list {
			values = append(values, jsonutil.FlexibleStringValue(item))
		}
		return values
	}

	var counts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &counts); err == nil {
		values := make([]string, 0, len(counts))
		for k := range counts {
			values = append(values, k)
		}
		sort.Strings(values)
		return values
	}

	return []string{}
}
