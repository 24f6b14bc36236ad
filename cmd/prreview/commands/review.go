package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/irahardianto/prreview/internal/engine/config"
	"github.com/irahardianto/prreview/internal/engine/formatter"
	"github.com/irahardianto/prreview/internal/engine/git"
	"github.com/spf13/cobra"
)

var reviewOpts ReviewOpts
var flagFormat string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a single diff and print the result",
	Long: `Review one diff locally. The diff is read from --file, from the staged changes
(--staged), from the changes since a base ref (--base), or from stdin.

Exit status is 1 when the review fails or, with --fail-on, when any finding is
at or above the given severity.`,
	Example: `  git diff main | prreview review
  prreview review --staged --profile security
  prreview review --base origin/main --format sarif > review.sarif`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := runReview(cmd.Context(), cmd, reviewOpts)
		if errors.Is(err, ErrFindingsAboveThreshold) {
			os.Exit(1)
		}
		return err
	},
}

func init() {
	f := reviewCmd.Flags()
	f.StringVar(&reviewOpts.File, "file", "", "Read the diff from a file")
	f.BoolVar(&reviewOpts.Staged, "staged", false, "Review staged changes (git diff --cached)")
	f.StringVar(&reviewOpts.Base, "base", "", "Review changes between this ref and HEAD")
	f.StringVar(&reviewOpts.Title, "title", "", "Pull request title")
	f.StringVar(&reviewOpts.RepoContext, "repo-context", "", "Free-form repository context")
	f.StringVar(&reviewOpts.Language, "language", "", "Primary language of the diff (default typescript)")
	f.StringVar(&reviewOpts.Profile, "profile", "", "Review profile: balanced, strict, security")
	f.StringVar(&reviewOpts.FailOn, "fail-on", "", "Exit 1 if any finding has at least this severity: low, medium, high")
	f.StringVar(&flagFormat, "format", "text", "Output format: text, json, sarif")
	rootCmd.AddCommand(reviewCmd)
}

// runReview is the composition root for a one-shot review.
func runReview(ctx context.Context, cmd *cobra.Command, opts ReviewOpts) error {
	cfg, err := config.Load(ctx, flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	svc, err := newReviewService(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	f, err := formatter.New(flagFormat, !flagNoColor && isTerminal(out))
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	run := &ReviewRun{
		Git:       git.NewExecService(wd),
		Reviewer:  svc.Service,
		Formatter: f,
		ReadFile:  os.ReadFile,
		Stdin:     cmd.InOrStdin(),
		Stdout:    out,
		Progress:  NewProgress(cmd.ErrOrStderr(), flagJSON || flagFormat != "text"),
	}
	return run.Execute(ctx, opts)
}
