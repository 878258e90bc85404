// Package parser turns model output written in the severity line protocol
// into raw insights.
//
// Each non-empty line is parsed on its own and has one of two shapes:
//
//	SEVERITY: description | RECOMMENDATION: action
//	SEVERITY: description
//
// SEVERITY is CRITICAL, WARNING or INFO in any case. Lines that match
// neither shape are skipped.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// minResponseLength is the shortest response worth parsing.
const minResponseLength = 10

var (
	severityPattern       = regexp.MustCompile(`(?i)^(CRITICAL|WARNING|INFO):\s*(.+)`)
	recommendationPattern = regexp.MustCompile(`(?i)^RECOMMENDATION:\s*(.+)`)

	severityMarkers = []string{"CRITICAL:", "WARNING:", "INFO:"}
)

// Parser converts protocol text into raw insights.
type Parser struct {
	logger *zap.Logger
}

// New creates a Parser.
func New(logger *zap.Logger) *Parser {
	return &Parser{logger: logger.Named("parser")}
}

// Parse extracts one insight per protocol line. It never fails; an output
// with no protocol lines yields an empty slice.
func (p *Parser) Parse(response string) []models.RawInsight {
	lines := strings.Split(strings.TrimSpace(response), "\n")
	insights := make([]models.RawInsight, 0, len(lines))

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}

		insight, ok := ParseLine(line)
		if !ok {
			p.logger.Debug("Skipping non-protocol line",
				zap.Int("line", i+1),
				zap.String("text", logging.TruncateString(line, 100)))
			continue
		}
		insights = append(insights, insight)
	}

	p.logger.Info("Parsed model response",
		zap.Int("lines", len(lines)),
		zap.Int("insights", len(insights)))

	return insights
}

// ParseLine parses a single protocol line.
func ParseLine(line string) (models.RawInsight, bool) {
	line = strings.TrimSpace(line)

	head, rest, hasRecommendation := strings.Cut(line, "|")
	if hasRecommendation {
		head = strings.TrimSpace(head)
	}

	m := severityPattern.FindStringSubmatch(head)
	if m == nil {
		return models.RawInsight{}, false
	}

	insight := models.RawInsight{
		Severity:    models.Severity(strings.ToLower(m[1])),
		Description: strings.TrimSpace(m[2]),
	}

	if hasRecommendation {
		rest = strings.TrimSpace(rest)
		if rm := recommendationPattern.FindStringSubmatch(rest); rm != nil {
			insight.Recommendation = strings.TrimSpace(rm[1])
		} else {
			insight.Recommendation = rest
		}
	}

	return insight, true
}

// ValidateResponse reports whether text looks like protocol output: at least
// minResponseLength characters after trimming and containing one severity
// marker, case-insensitively.
func ValidateResponse(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minResponseLength {
		return false
	}

	upper := strings.ToUpper(text)
	for _, marker := range severityMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
