// Package formatter renders review results for terminals and tooling.
package formatter

import (
	"fmt"

	"github.com/irahardianto/prreview/internal/engine/review"
)

// Formatter formats a review Result into a human-readable or machine-readable string.
type Formatter interface {
	Format(result *review.Result) string
}

// New returns the formatter for name: "text", "json", or "sarif".
func New(name string, color bool) (Formatter, error) {
	switch name {
	case "", "text":
		return NewCLIFormatter(color), nil
	case "json":
		return NewJSONFormatter(), nil
	case "sarif":
		return NewSARIFFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: text, json, sarif)", name)
	}
}
