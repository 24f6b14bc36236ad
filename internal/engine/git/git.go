// Package git reads diffs from a local repository and inspects unified diff text.
package git

import (
	"context"
)

// FileDiff holds the portion of a diff that touches one file.
type FileDiff struct {
	Path    string
	Content string
}

// Service abstracts git operations for testability.
type Service interface {
	// StagedDiff returns the unified diff of staged changes.
	StagedDiff(ctx context.Context) (string, error)
	// RangeDiff returns the unified diff between base and HEAD (merge-base form).
	RangeDiff(ctx context.Context, base string) (string, error)
}
