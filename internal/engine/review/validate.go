package review

import (
	"encoding/json"
	"fmt"
)

// document is the untyped form of parsed model output.
type document = map[string]any

// section checks one top-level field of the document and, on success, copies
// it into the result.
type section func(doc document, r *Result) error

// sections run in this order and stop at the first violation.
var sections = []section{
	validateSummary,
	validateRisk,
	validateFindings,
	validateSuggestions,
	validateChecklist,
	validateMeta,
}

// Validate parses raw model output and checks it against the review schema.
// It returns either a complete Result or an error wrapping ErrMalformedJSON or
// ErrInvalidShape; never a partial result.
func Validate(raw string) (*Result, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	doc, ok := parsed.(document)
	if !ok {
		return nil, &ShapeError{Reason: "Model returned invalid JSON shape"}
	}

	var r Result
	for _, check := range sections {
		if err := check(doc, &r); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func validateSummary(doc document, r *Result) error {
	summary, ok := doc["summary"].(document)
	if !ok {
		return &ShapeError{Field: "summary", Reason: "Invalid summary"}
	}
	overview, ok := summary["overview"].(string)
	if !ok {
		return &ShapeError{Field: "summary.overview", Reason: "Invalid summary"}
	}
	keyChanges, ok := stringSlice(summary["keyChanges"])
	if !ok {
		return &ShapeError{Field: "summary.keyChanges", Reason: "Invalid summary.keyChanges"}
	}

	r.Summary = Summary{Overview: overview, KeyChanges: keyChanges}
	return nil
}

func validateRisk(doc document, r *Result) error {
	risk, ok := doc["risk"].(document)
	if !ok {
		return &ShapeError{Field: "risk", Reason: "Invalid risk"}
	}
	level, ok := enumValue(risk["level"], RiskLow, RiskMedium, RiskHigh)
	if !ok {
		return &ShapeError{Field: "risk.level", Reason: "Invalid risk"}
	}
	rationale, ok := stringSlice(risk["rationale"])
	if !ok {
		return &ShapeError{Field: "risk.rationale", Reason: "Invalid risk"}
	}

	r.Risk = Risk{Level: level, Rationale: rationale}
	return nil
}

func validateFindings(doc document, r *Result) error {
	items, ok := doc["findings"].([]any)
	if !ok {
		return &ShapeError{Field: "findings", Reason: "Invalid findings"}
	}

	findings := make([]Finding, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("findings[%d]", i)
		obj, ok := item.(document)
		if !ok {
			return &ShapeError{Field: field, Reason: "Invalid finding"}
		}

		id, okID := obj["id"].(string)
		severity, okSev := enumValue(obj["severity"], SeverityLow, SeverityMedium, SeverityHigh)
		category, okCat := enumValue(obj["category"],
			CategoryBug, CategorySecurity, CategoryPerformance, CategoryMaintainability, CategoryStyle)
		message, okMsg := obj["message"].(string)
		recommendation, okRec := obj["recommendation"].(string)
		if !okID || !okSev || !okCat || !okMsg || !okRec {
			return &ShapeError{Field: field, Reason: "Invalid finding"}
		}

		file, ok := optionalString(obj, "file")
		if !ok {
			return &ShapeError{Field: field + ".file", Reason: "Invalid finding.file"}
		}
		lineHint, ok := optionalString(obj, "lineHint")
		if !ok {
			return &ShapeError{Field: field + ".lineHint", Reason: "Invalid finding.lineHint"}
		}

		findings = append(findings, Finding{
			ID:             id,
			Severity:       severity,
			Category:       category,
			File:           file,
			LineHint:       lineHint,
			Message:        message,
			Recommendation: recommendation,
		})
	}

	r.Findings = findings
	return nil
}

func validateSuggestions(doc document, r *Result) error {
	items, ok := doc["suggestions"].([]any)
	if !ok {
		return &ShapeError{Field: "suggestions", Reason: "Invalid suggestions"}
	}

	suggestions := make([]Suggestion, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("suggestions[%d]", i)
		obj, ok := item.(document)
		if !ok {
			return &ShapeError{Field: field, Reason: "Invalid suggestion"}
		}

		title, okTitle := obj["title"].(string)
		detail, okDetail := obj["detail"].(string)
		if !okTitle || !okDetail {
			return &ShapeError{Field: field, Reason: "Invalid suggestion"}
		}
		example, ok := optionalString(obj, "example")
		if !ok {
			return &ShapeError{Field: field + ".example", Reason: "Invalid suggestion.example"}
		}

		suggestions = append(suggestions, Suggestion{Title: title, Detail: detail, Example: example})
	}

	r.Suggestions = suggestions
	return nil
}

func validateChecklist(doc document, r *Result) error {
	items, ok := doc["checklist"].([]any)
	if !ok {
		return &ShapeError{Field: "checklist", Reason: "Invalid checklist"}
	}

	checklist := make([]ChecklistItem, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("checklist[%d]", i)
		obj, ok := item.(document)
		if !ok {
			return &ShapeError{Field: field, Reason: "Invalid checklist item"}
		}

		name, okName := obj["item"].(string)
		status, okStatus := enumValue(obj["status"], ChecklistMissing, ChecklistOK, ChecklistUnknown)
		if !okName || !okStatus {
			return &ShapeError{Field: field, Reason: "Invalid checklist item"}
		}

		checklist = append(checklist, ChecklistItem{Item: name, Status: status})
	}

	r.Checklist = checklist
	return nil
}

func validateMeta(doc document, r *Result) error {
	meta, ok := doc["meta"].(document)
	if !ok {
		return &ShapeError{Field: "meta", Reason: "Invalid meta"}
	}
	model, okModel := meta["model"].(string)
	version, okVersion := meta["promptVersion"].(string)
	if !okModel || !okVersion {
		return &ShapeError{Field: "meta", Reason: "Invalid meta"}
	}

	r.Meta = Meta{Model: model, PromptVersion: version}
	return nil
}

// stringSlice accepts only a JSON array whose elements are all strings.
// An empty array yields a non-nil empty slice so it re-encodes as [].
func stringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// enumValue accepts v only if it is a string equal to one of allowed.
func enumValue[T ~string](v any, allowed ...T) (T, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	for _, a := range allowed {
		if T(s) == a {
			return a, true
		}
	}
	return "", false
}

// optionalString returns (nil, true) when key is absent, the value when it is
// a string, and false for any other type.
func optionalString(obj document, key string) (*string, bool) {
	v, present := obj[key]
	if !present {
		return nil, true
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}
