package formatter

import (
	"encoding/json"

	"github.com/irahardianto/prreview/internal/engine/review"
)

// JSONFormatter outputs a Result as pretty-printed JSON, in the same shape the
// HTTP API returns.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the Result as indented JSON.
func (f *JSONFormatter) Format(result *review.Result) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return `{"error": "failed to marshal result"}`
	}
	return string(data)
}
