package formatter

import (
	"bytes"
	"fmt"

	"github.com/irahardianto/prreview/internal/engine/review"
	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	toolName = "prreview"
	toolURI  = "https://github.com/irahardianto/prreview"
)

// SARIFFormatter outputs a Result as a SARIF 2.1.0 log so findings can be
// uploaded to code-scanning dashboards. Each category becomes a rule.
type SARIFFormatter struct{}

// NewSARIFFormatter creates a new SARIFFormatter.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{}
}

// Format returns the SARIF document as indented JSON.
func (f *SARIFFormatter) Format(result *review.Result) string {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	rules := make(map[review.Category]bool)
	for _, finding := range result.Findings {
		ruleID := string(finding.Category)
		if !rules[finding.Category] {
			rules[finding.Category] = true
			run.AddRule(ruleID).WithDescription(fmt.Sprintf("%s issue reported by LLM review", finding.Category))
		}

		res := run.CreateResultForRule(ruleID).
			WithLevel(sarifLevel(finding.Severity)).
			WithMessage(sarif.NewTextMessage(sarifMessage(finding)))

		if finding.File != nil && *finding.File != "" {
			res.AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(*finding.File)),
			))
		}
	}

	report.AddRun(run)

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return buf.String()
}

// sarifLevel maps review severity onto SARIF result levels.
func sarifLevel(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "error"
	case review.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func sarifMessage(finding review.Finding) string {
	msg := fmt.Sprintf("[%s] %s", finding.ID, finding.Message)
	if finding.LineHint != nil && *finding.LineHint != "" {
		msg += " (" + *finding.LineHint + ")"
	}
	if finding.Recommendation != "" {
		msg += " Recommendation: " + finding.Recommendation
	}
	return msg
}
