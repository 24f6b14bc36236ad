package review

import (
	"errors"
	"fmt"

	"github.com/irahardianto/prreview/internal/engine/llm"
)

var (
	// ErrNotConfigured means no completion credential was provided at startup.
	ErrNotConfigured = errors.New("review service is not configured: missing API key")
	// ErrInvalidRequest means the inbound request failed input validation.
	ErrInvalidRequest = errors.New("invalid review request")
	// ErrPayloadTooLarge means the diff exceeds the configured ceiling.
	ErrPayloadTooLarge = errors.New("diff exceeds maximum length")
	// ErrMalformedJSON means the model output was not parseable JSON.
	ErrMalformedJSON = errors.New("model returned invalid JSON")
	// ErrInvalidShape means the model output did not match the review schema.
	ErrInvalidShape = errors.New("model returned invalid JSON shape")
)

// ShapeError names the first schema violation found in model output.
type ShapeError struct {
	// Field is the JSON path of the offending value, e.g. "findings[2]".
	Field string
	// Reason is a short description such as "Invalid finding".
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (at %s)", e.Reason, e.Field)
}

// Is makes errors.Is(err, ErrInvalidShape) match any *ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}

// ErrorCategory is one of the three failure classes a client can observe.
type ErrorCategory string

const (
	CategoryInputRejected ErrorCategory = "input_rejected"
	CategoryUnavailable   ErrorCategory = "unavailable"
	CategoryUpstream      ErrorCategory = "upstream_failure"
)

// CategoryOf maps an error from CreateReview to its client-facing category.
// Anything unrecognised is an upstream failure.
func CategoryOf(err error) ErrorCategory {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrPayloadTooLarge):
		return CategoryInputRejected
	case errors.Is(err, ErrNotConfigured):
		return CategoryUnavailable
	default:
		return CategoryUpstream
	}
}

// upstreamKind names the failure for diagnostics without exposing it to clients.
func upstreamKind(err error) string {
	var shape *ShapeError
	switch {
	case errors.As(err, &shape):
		return "invalid_shape"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, llm.ErrUpstream):
		return "upstream_error"
	default:
		return "unknown"
	}
}
