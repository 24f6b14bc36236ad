package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/irahardianto/prreview/internal/platform/logger"
)

// ExecService implements Service by running git commands via os/exec.
type ExecService struct {
	// WorkDir is the working directory for git commands.
	// If empty, the current directory is used.
	WorkDir string
}

// NewExecService creates a new ExecService with the given working directory.
func NewExecService(workDir string) *ExecService {
	return &ExecService{WorkDir: workDir}
}

// StagedDiff returns the unified diff of staged changes.
func (s *ExecService) StagedDiff(ctx context.Context) (string, error) {
	logger.FromContext(ctx).Debug("reading staged diff")

	out, err := s.runGit(ctx, "diff", "--cached", "--no-color")
	if err != nil {
		return "", fmt.Errorf("getting staged diff: %w", err)
	}
	return out, nil
}

// RangeDiff returns the diff of HEAD against its merge base with base.
func (s *ExecService) RangeDiff(ctx context.Context, base string) (string, error) {
	logger.FromContext(ctx).Debug("reading range diff", "base", base)

	if base == "" || strings.HasPrefix(base, "-") {
		return "", fmt.Errorf("invalid base ref %q", base)
	}

	out, err := s.runGit(ctx, "diff", "--no-color", base+"...HEAD")
	if err != nil {
		return "", fmt.Errorf("getting diff against %s: %w", base, err)
	}
	return out, nil
}

// runGit executes a git command and returns stdout.
func (s *ExecService) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) // #nosec G204 -- args are built by the application; refs are checked for option injection
	cmd.Dir = s.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)", strings.Join(args, " "), err, stderr.String())
	}

	return stdout.String(), nil
}
