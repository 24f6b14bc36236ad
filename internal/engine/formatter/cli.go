package formatter

import (
	"fmt"
	"strings"

	"github.com/irahardianto/prreview/internal/engine/review"
)

// ANSI color codes.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiDim    = "\033[2m"
)

// CLIFormatter outputs a Result as a human-readable terminal report.
type CLIFormatter struct {
	Color bool
}

// NewCLIFormatter creates a new CLIFormatter.
func NewCLIFormatter(color bool) *CLIFormatter {
	return &CLIFormatter{Color: color}
}

// Format returns a formatted CLI report.
func (f *CLIFormatter) Format(result *review.Result) string {
	var b strings.Builder

	// Header
	b.WriteString(fmt.Sprintf("\n%s — risk %s\n",
		f.colorize("Review", ansiBold),
		f.colorize(string(result.Risk.Level), riskColor(result.Risk.Level))))
	b.WriteString(fmt.Sprintf("%s\n", f.colorize(fmt.Sprintf("model %s, prompt %s", result.Meta.Model, result.Meta.PromptVersion), ansiDim)))

	b.WriteString("\n" + result.Summary.Overview + "\n")
	for _, c := range result.Summary.KeyChanges {
		b.WriteString(fmt.Sprintf("  • %s\n", c))
	}

	if len(result.Risk.Rationale) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", f.colorize("Risk rationale", ansiBold)))
		for _, r := range result.Risk.Rationale {
			b.WriteString(fmt.Sprintf("  • %s\n", r))
		}
	}

	b.WriteString(fmt.Sprintf("\n%s (%d)\n", f.colorize("Findings", ansiBold), len(result.Findings)))
	if len(result.Findings) == 0 {
		b.WriteString(fmt.Sprintf("  %s\n", f.colorize("none", ansiGreen)))
	}
	for _, finding := range result.Findings {
		f.writeFinding(&b, finding)
	}

	if len(result.Suggestions) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", f.colorize("Suggestions", ansiBold)))
		for _, s := range result.Suggestions {
			b.WriteString(fmt.Sprintf("  💡 %s — %s\n", s.Title, s.Detail))
			if s.Example != nil && *s.Example != "" {
				for _, line := range strings.Split(*s.Example, "\n") {
					b.WriteString(fmt.Sprintf("      %s\n", f.colorize(line, ansiDim)))
				}
			}
		}
	}

	if len(result.Checklist) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", f.colorize("Checklist", ansiBold)))
		for _, item := range result.Checklist {
			b.WriteString(fmt.Sprintf("  %s %s\n", f.checklistIcon(item.Status), item.Item))
		}
	}

	return b.String()
}

func (f *CLIFormatter) writeFinding(b *strings.Builder, finding review.Finding) {
	// Location
	loc := ""
	if finding.File != nil && *finding.File != "" {
		loc = *finding.File
		if finding.LineHint != nil && *finding.LineHint != "" {
			loc = fmt.Sprintf("%s (%s)", loc, *finding.LineHint)
		}
		loc = f.colorize(loc, ansiCyan) + " "
	}

	sevIcon := "ℹ️"
	switch finding.Severity {
	case review.SeverityHigh:
		sevIcon = "❌"
	case review.SeverityMedium:
		sevIcon = "⚠️"
	}

	tag := f.colorize(fmt.Sprintf("[%s/%s]", finding.ID, finding.Category), ansiDim) + " "

	b.WriteString(fmt.Sprintf("  %s %s%s%s\n", sevIcon, loc, tag,
		f.colorize(finding.Message, severityColor(finding.Severity))))

	if finding.Recommendation != "" {
		b.WriteString(fmt.Sprintf("      → %s\n", finding.Recommendation))
	}
}

func (f *CLIFormatter) checklistIcon(s review.ChecklistStatus) string {
	switch s {
	case review.ChecklistOK:
		return f.colorize("✔", ansiGreen)
	case review.ChecklistMissing:
		return f.colorize("✘", ansiRed)
	default:
		return f.colorize("?", ansiYellow)
	}
}

func (f *CLIFormatter) colorize(s, code string) string {
	if !f.Color {
		return s
	}
	return code + s + ansiReset
}

func riskColor(l review.RiskLevel) string {
	return severityColor(review.Severity(l))
}

func severityColor(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return ansiRed
	case review.SeverityMedium:
		return ansiYellow
	default:
		return ansiDim
	}
}
