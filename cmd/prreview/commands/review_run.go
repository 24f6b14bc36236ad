package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/irahardianto/prreview/internal/engine/formatter"
	"github.com/irahardianto/prreview/internal/engine/git"
	"github.com/irahardianto/prreview/internal/engine/review"
	"github.com/irahardianto/prreview/internal/platform/logger"
)

var (
	// ErrFindingsAboveThreshold is returned when --fail-on matches a finding.
	ErrFindingsAboveThreshold = errors.New("findings at or above severity threshold")
	// ErrConflictingSources is returned when more than one diff source is set.
	ErrConflictingSources = errors.New("only one of --file, --staged, --base may be set")
)

// ReviewOpts holds per-invocation options for a one-shot review.
type ReviewOpts struct {
	File        string
	Staged      bool
	Base        string
	Title       string
	RepoContext string
	Language    string
	Profile     string
	// FailOn is the minimum finding severity that fails the run. Empty disables it.
	FailOn string
}

// ReviewRun orchestrates a single review with injected dependencies.
type ReviewRun struct {
	// Git supplies staged and range diffs.
	Git git.Service

	// Reviewer runs the review.
	Reviewer Reviewer

	// Formatter renders the result.
	Formatter formatter.Formatter

	// ReadFile reads a diff from disk.
	ReadFile func(path string) ([]byte, error)

	// Stdin is read when no other diff source is set.
	Stdin io.Reader

	// Stdout receives the formatted result.
	Stdout io.Writer

	// Progress reports status to stderr. Nil disables it.
	Progress *Progress
}

// Execute reads the diff, runs the review, and prints the result.
func (r *ReviewRun) Execute(ctx context.Context, opts ReviewOpts) error {
	log := logger.FromContext(ctx)

	threshold, err := parseThreshold(opts.FailOn)
	if err != nil {
		return err
	}

	diff, source, err := r.readDiff(ctx, opts)
	if err != nil {
		return err
	}
	log.Debug("diff loaded", "source", source, "bytes", len(diff))
	r.Progress.OnStart(source, diff)

	result, err := r.Reviewer.CreateReview(ctx, review.Request{
		Title:         opts.Title,
		Diff:          diff,
		RepoContext:   opts.RepoContext,
		Language:      opts.Language,
		ReviewProfile: review.Profile(opts.Profile),
	})
	r.Progress.OnComplete(result, err)
	if err != nil {
		return fmt.Errorf("review failed (%s): %w", review.CategoryOf(err), err)
	}

	if _, err := fmt.Fprintln(r.Stdout, r.Formatter.Format(result)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if threshold > 0 {
		for _, f := range result.Findings {
			if review.SeverityRank(f.Severity) >= threshold {
				return ErrFindingsAboveThreshold
			}
		}
	}
	return nil
}

func (r *ReviewRun) readDiff(ctx context.Context, opts ReviewOpts) (string, string, error) {
	sources := 0
	for _, set := range []bool{opts.File != "", opts.Staged, opts.Base != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", "", ErrConflictingSources
	}

	switch {
	case opts.File != "":
		data, err := r.ReadFile(opts.File)
		if err != nil {
			return "", "", fmt.Errorf("reading diff file: %w", err)
		}
		return string(data), "file", nil
	case opts.Staged:
		diff, err := r.Git.StagedDiff(ctx)
		if err != nil {
			return "", "", fmt.Errorf("getting staged diff: %w", err)
		}
		return diff, "staged", nil
	case opts.Base != "":
		diff, err := r.Git.RangeDiff(ctx, opts.Base)
		if err != nil {
			return "", "", fmt.Errorf("getting diff against %s: %w", opts.Base, err)
		}
		return diff, "range", nil
	default:
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
}

func parseThreshold(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	rank := review.SeverityRank(review.Severity(name))
	if rank == 0 {
		return 0, fmt.Errorf("invalid --fail-on %q (valid: low, medium, high)", name)
	}
	return rank, nil
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
