package prompts

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/anonymizer"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// Template keys.
const (
	TemplateGeneral  = "general"
	TemplateML       = "ml"
	TemplateBusiness = "business"
	TemplateAnomaly  = "anomaly"
)

var templateKeys = []string{TemplateGeneral, TemplateML, TemplateBusiness, TemplateAnomaly}

// Thresholds for the issues summary.
const (
	HighNullThreshold    = 30.0
	DuplicateThreshold   = 5.0
	OutlierThreshold     = 10.0
	HighCorrelationAbs   = 0.9
	maxIssueItems        = 5
	sampleColumnCount    = 5
	noIssuesDetectedText = "No major issues detected"
)

const fallbackTemplateSource = `You are a data quality expert analyzing a dataset.

{{.DatasetSummary}}

Detected Issues:
{{.IssuesSummary}}

Please provide insights in this format:
CRITICAL: [issue] | RECOMMENDATION: [action]
WARNING: [issue] | RECOMMENDATION: [action]
INFO: [insight]
`

var fallbackTemplate = template.Must(template.New("fallback").Parse(fallbackTemplateSource))

// PromptData fills the named slots of a template.
type PromptData struct {
	DatasetSummary string
	IssuesSummary  string
	SampleData     string
	QualityScore   string
	Goal           string
}

type templateCatalogue struct {
	Templates map[string]string `yaml:"templates"`
}

// Builder turns a profile and a goal into a model prompt.
type Builder struct {
	anonymizer *anonymizer.Anonymizer
	templates  map[string]*template.Template
	logger     *zap.Logger
}

// NewBuilder creates a Builder using the embedded template catalogue.
func NewBuilder(anon *anonymizer.Anonymizer, logger *zap.Logger) *Builder {
	return NewBuilderFromSource(anon, embeddedTemplates, logger)
}

// NewBuilderFromSource creates a Builder from a YAML template catalogue.
// Any template that is missing or fails to parse is replaced by the
// fallback template.
func NewBuilderFromSource(anon *anonymizer.Anonymizer, source []byte, logger *zap.Logger) *Builder {
	b := &Builder{
		anonymizer: anon,
		templates:  make(map[string]*template.Template, len(templateKeys)),
		logger:     logger.Named("prompts"),
	}

	var catalogue templateCatalogue
	if err := yaml.Unmarshal(source, &catalogue); err != nil {
		b.logger.Warn("Failed to load prompt templates, using fallback", zap.Error(err))
	}

	for _, key := range templateKeys {
		text, ok := catalogue.Templates[key]
		if !ok || strings.TrimSpace(text) == "" {
			b.logger.Warn("Prompt template not found, using fallback", zap.String("template", key))
			b.templates[key] = fallbackTemplate
			continue
		}
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			b.logger.Warn("Prompt template failed to parse, using fallback",
				zap.String("template", key), zap.Error(err))
			b.templates[key] = fallbackTemplate
			continue
		}
		b.templates[key] = tmpl
	}

	return b
}

// TemplateKey maps a goal to its template. Unknown goals use the general template.
func TemplateKey(goal models.GoalType) string {
	switch goal {
	case models.GoalMLPreparation:
		return TemplateML
	case models.GoalBusinessReporting:
		return TemplateBusiness
	case models.GoalAnomalyDetection:
		return TemplateAnomaly
	default:
		return TemplateGeneral
	}
}

// Build renders the prompt for profile and goal. It only fails when the
// column sample cannot be encoded.
func (b *Builder) Build(profile *models.ProfileResult, goal models.GoalType) (string, error) {
	key := TemplateKey(goal)

	sampleCols := profile.ColumnProfiles
	if len(sampleCols) > sampleColumnCount {
		sampleCols = sampleCols[:sampleColumnCount]
	}
	sample, err := b.anonymizer.Anonymize(sampleCols)
	if err != nil {
		return "", fmt.Errorf("failed to anonymize sample columns: %w", err)
	}

	data := PromptData{
		DatasetSummary: DatasetSummary(profile),
		IssuesSummary:  IssuesSummary(profile),
		SampleData:     sample,
		QualityScore:   models.FormatNumber(profile.QualityScore),
		Goal:           string(goal),
	}

	var out strings.Builder
	if err := b.templates[key].Execute(&out, data); err != nil {
		b.logger.Warn("Prompt template failed to render, using fallback",
			zap.String("template", key), zap.Error(err))
		out.Reset()
		if err := fallbackTemplate.Execute(&out, data); err != nil {
			return "", fmt.Errorf("failed to render fallback prompt: %w", err)
		}
	}

	prompt := out.String()
	b.logger.Debug("Built prompt",
		zap.String("goal", string(goal)),
		zap.String("template", key),
		zap.Int("length", len(prompt)))

	return prompt, nil
}

// DatasetSummary describes size, quality score and the per-type column counts.
func DatasetSummary(profile *models.ProfileResult) string {
	var sb strings.Builder
	sb.WriteString("Dataset Characteristics:\n")
	fmt.Fprintf(&sb, "- Rows: %s\n", humanize.Comma(profile.RowCount))
	fmt.Fprintf(&sb, "- Columns: %d\n", profile.ColumnCount)
	fmt.Fprintf(&sb, "- Quality Score: %s/100\n", models.FormatNumber(profile.QualityScore))
	sb.WriteString("\nColumn Types:")

	counts := make(map[models.DataType]int)
	for _, c := range profile.ColumnProfiles {
		counts[c.DataType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&sb, "\n- %s: %d column(s)", t, counts[models.DataType(t)])
	}

	return sb.String()
}

// IssuesSummary lists the threshold violations visible in the profile.
// Returns a fixed sentence when nothing crosses a threshold.
func IssuesSummary(profile *models.ProfileResult) string {
	var issues []string

	var highNull []string
	for _, c := range profile.ColumnProfiles {
		if c.NullPercentage > HighNullThreshold {
			highNull = append(highNull, c.ColumnName)
		}
	}
	if len(highNull) > 0 {
		issues = append(issues, "- High null percentage (>30%) in: "+capList(highNull))
	}

	if profile.QualityMetrics != nil && profile.QualityMetrics.DuplicatePercentage > DuplicateThreshold {
		issues = append(issues, fmt.Sprintf("- %.1f%% duplicate rows detected", profile.QualityMetrics.DuplicatePercentage))
	}

	var outliers []string
	for i := range profile.ColumnProfiles {
		if profile.ColumnProfiles[i].OutlierPercentage() > OutlierThreshold {
			outliers = append(outliers, profile.ColumnProfiles[i].ColumnName)
		}
	}
	if len(outliers) > 0 {
		issues = append(issues, "- Outliers detected (>10%) in: "+capList(outliers))
	}

	if pairs := highCorrelationPairs(profile.QualityMetrics); len(pairs) > 0 {
		issues = append(issues, "- High correlation (>0.9) between: "+capList(pairs))
	}

	if len(issues) == 0 {
		return noIssuesDetectedText
	}
	return strings.Join(issues, "\n")
}

// highCorrelationPairs returns "a & b" for every distinct column pair whose
// absolute correlation exceeds the threshold, in sorted order. The diagonal
// and the mirrored half of the matrix are skipped.
func highCorrelationPairs(qm *models.QualityMetrics) []string {
	if qm == nil || len(qm.CorrelationMatrix) == 0 {
		return nil
	}

	rows := make([]string, 0, len(qm.CorrelationMatrix))
	for col := range qm.CorrelationMatrix {
		rows = append(rows, col)
	}
	sort.Strings(rows)

	seen := make(map[[2]string]bool)
	var pairs []string
	for _, a := range rows {
		cols := make([]string, 0, len(qm.CorrelationMatrix[a]))
		for b := range qm.CorrelationMatrix[a] {
			cols = append(cols, b)
		}
		sort.Strings(cols)

		for _, b := range cols {
			if a == b || math.Abs(qm.CorrelationMatrix[a][b]) <= HighCorrelationAbs {
				continue
			}
			key := [2]string{min(a, b), max(a, b)}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, a+" & "+b)
		}
	}
	return pairs
}

func capList(items []string) string {
	if len(items) <= maxIssueItems {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:maxIssueItems], ", "), len(items)-maxIssueItems)
}
