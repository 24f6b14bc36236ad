package review

import (
	"fmt"
	"unicode/utf8"
)

// Profile biases the tone of the review. It has no effect on validation.
type Profile string

const (
	ProfileBalanced Profile = "balanced"
	ProfileStrict   Profile = "strict"
	ProfileSecurity Profile = "security"
)

const (
	// MinDiffLength is the shortest diff accepted, counted in Unicode code points.
	MinDiffLength = 20
	// DefaultLanguage is assumed when the client names none.
	DefaultLanguage = "typescript"
)

// Request is an inbound review request.
type Request struct {
	Title         string  `json:"title,omitempty"`
	Diff          string  `json:"diff"`
	RepoContext   string  `json:"repoContext,omitempty"`
	Language      string  `json:"language,omitempty"`
	ReviewProfile Profile `json:"reviewProfile,omitempty"`
}

// Normalize validates the request and fills defaults. Errors wrap ErrInvalidRequest.
func (r Request) Normalize() (Request, error) {
	switch r.ReviewProfile {
	case "":
		r.ReviewProfile = ProfileBalanced
	case ProfileBalanced, ProfileStrict, ProfileSecurity:
	default:
		return Request{}, fmt.Errorf("%w: reviewProfile must be one of balanced, strict, security", ErrInvalidRequest)
	}

	if r.Language == "" {
		r.Language = DefaultLanguage
	}

	if utf8.RuneCountInString(r.Diff) < MinDiffLength {
		return Request{}, fmt.Errorf("%w: diff must be at least %d characters", ErrInvalidRequest, MinDiffLength)
	}

	return r, nil
}
