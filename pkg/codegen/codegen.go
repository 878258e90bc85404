// Package codegen produces remediation snippets for categorized insights.
//
// Snippets are selected from fixed templates keyed by insight type and
// language. Python covers every insight type; SQL and R cover the common
// cleaning operations only. Combinations without a template yield no snippet.
package codegen

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// Language is a snippet target language.
type Language string

const (
	LanguagePython Language = "python"
	LanguageSQL    Language = "sql"
	LanguageR      Language = "r"
)

// ValidLanguages lists the supported snippet languages.
var ValidLanguages = []Language{LanguagePython, LanguageSQL, LanguageR}

// IsValidLanguage reports whether l is supported.
func IsValidLanguage(l Language) bool {
	return slices.Contains(ValidLanguages, l)
}

// snippetFunc renders a snippet for one insight. ok is false when the
// template set has nothing for the insight.
type snippetFunc func(in *models.CategorizedInsight) (snippet string, ok bool)

var generators = map[Language]snippetFunc{
	LanguagePython: pythonSnippet,
	LanguageSQL:    sqlSnippet,
	LanguageR:      rSnippet,
}

// Generator renders snippets and logs what it selected.
type Generator struct {
	logger *zap.Logger
}

// New creates a Generator.
func New(logger *zap.Logger) *Generator {
	return &Generator{logger: logger.Named("codegen")}
}

// Generate returns the remediation snippet for the insight in the given
// language. It never fails: unsupported combinations return ok=false.
func (g *Generator) Generate(in *models.CategorizedInsight, lang Language) (string, bool) {
	gen, supported := generators[lang]
	if !supported {
		g.logger.Warn("Unsupported snippet language", zap.String("language", string(lang)))
		return "", false
	}

	snippet, ok := gen(in)
	g.logger.Debug("Snippet selection",
		zap.String("type", string(in.Type)),
		zap.String("language", string(lang)),
		zap.Bool("found", ok))
	return snippet, ok
}

// QualityReview returns a generic profiling snippet for issues that have no
// type-specific remedy, such as a low overall quality score.
func QualityReview(lang Language) (string, bool) {
	switch lang {
	case LanguagePython:
		return pythonQualityReview, true
	case LanguageSQL:
		return sqlQualityReview, true
	case LanguageR:
		return rQualityReview, true
	}
	return "", false
}

// firstColumn returns the first affected column, if any.
func firstColumn(in *models.CategorizedInsight) (string, bool) {
	if len(in.AffectedColumns) == 0 {
		return "", false
	}
	return in.AffectedColumns[0], true
}

// fill substitutes {key} placeholders in a template.
func fill(tmpl string, pairs ...string) string {
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(tmpl)
}

func mentions(in *models.CategorizedInsight, word string) bool {
	return strings.Contains(strings.ToLower(in.Description), word)
}
