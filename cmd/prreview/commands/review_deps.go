package commands

import (
	"context"

	"github.com/irahardianto/prreview/internal/engine/review"
)

// Reviewer abstracts the review service so the command can run against fakes.
type Reviewer interface {
	CreateReview(ctx context.Context, req review.Request) (*review.Result, error)
}
