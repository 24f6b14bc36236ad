// Package review turns a diff into a validated, structured code review.
package review

// RiskLevel grades the overall risk of a change.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity grades a single finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Category classifies a finding.
type Category string

const (
	CategoryBug             Category = "bug"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryStyle           Category = "style"
)

// ChecklistStatus is the tri-state outcome of a checklist item.
type ChecklistStatus string

const (
	ChecklistMissing ChecklistStatus = "missing"
	ChecklistOK      ChecklistStatus = "ok"
	ChecklistUnknown ChecklistStatus = "unknown"
)

// Result is the structured review returned to clients.
type Result struct {
	Summary     Summary         `json:"summary"`
	Risk        Risk            `json:"risk"`
	Findings    []Finding       `json:"findings"`
	Suggestions []Suggestion    `json:"suggestions"`
	Checklist   []ChecklistItem `json:"checklist"`
	Meta        Meta            `json:"meta"`
}

// Summary describes the change as a whole.
type Summary struct {
	Overview   string   `json:"overview"`
	KeyChanges []string `json:"keyChanges"`
}

// Risk is the overall risk grade with its reasons.
type Risk struct {
	Level     RiskLevel `json:"level"`
	Rationale []string  `json:"rationale"`
}

// Finding is one reviewer-identified issue.
type Finding struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	File           *string  `json:"file,omitempty"`
	LineHint       *string  `json:"lineHint,omitempty"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

// Suggestion is an optional improvement that is not a defect.
type Suggestion struct {
	Title   string  `json:"title"`
	Detail  string  `json:"detail"`
	Example *string `json:"example,omitempty"`
}

// ChecklistItem is a named review criterion.
type ChecklistItem struct {
	Item   string          `json:"item"`
	Status ChecklistStatus `json:"status"`
}

// Meta records provenance. Both fields are always set by the server.
type Meta struct {
	Model         string `json:"model"`
	PromptVersion string `json:"promptVersion"`
}

// Stamp overwrites the provenance fields. Whatever the model reported is discarded.
func (r *Result) Stamp(model, promptVersion string) {
	r.Meta = Meta{Model: model, PromptVersion: promptVersion}
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
