package review

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/irahardianto/prreview/internal/engine/git"
	"github.com/irahardianto/prreview/internal/engine/llm"
	"github.com/irahardianto/prreview/internal/platform/logger"
)

// Service runs review requests against a completion gateway.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	gateway       llm.Gateway
	maxDiffLength int
}

// NewService creates a Service. A nil gateway means no credential was
// configured; every request then fails with ErrNotConfigured.
func NewService(gateway llm.Gateway, maxDiffLength int) *Service {
	return &Service{gateway: gateway, maxDiffLength: maxDiffLength}
}

// CreateReview validates req, calls the gateway once, and returns the
// validated result with provenance metadata set by the server.
func (s *Service) CreateReview(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx)

	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	if s.gateway == nil {
		return nil, ErrNotConfigured
	}

	if n := utf8.RuneCountInString(req.Diff); n > s.maxDiffLength {
		return nil, fmt.Errorf("%w of %d characters", ErrPayloadTooLarge, s.maxDiffLength)
	}

	files := git.ChangedFiles(req.Diff)
	log.Info("review started",
		"profile", req.ReviewProfile,
		"language", req.Language,
		"diff_chars", utf8.RuneCountInString(req.Diff),
		"files", len(files),
	)
	start := time.Now()

	completion, err := s.gateway.Complete(ctx, BuildPrompt(req))
	if err != nil {
		log.Error("completion failed", "kind", upstreamKind(err), "error", err)
		return nil, fmt.Errorf("requesting completion: %w", err)
	}

	result, err := Validate(completion.Content)
	if err != nil {
		log.Warn("model output rejected",
			"kind", upstreamKind(err),
			"model", completion.Model,
			"error", err,
		)
		return nil, err
	}

	result.Stamp(completion.Model, PromptVersion)
	warnUnknownFiles(ctx, result, files)

	log.Info("review completed",
		"model", completion.Model,
		"risk", result.Risk.Level,
		"findings", len(result.Findings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// warnUnknownFiles logs findings that cite a file the diff never touches.
// The findings are kept; this is a diagnostic for prompt tuning.
func warnUnknownFiles(ctx context.Context, result *Result, files []string) {
	if len(files) == 0 {
		return
	}
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}

	log := logger.FromContext(ctx)
	for _, f := range result.Findings {
		if f.File != nil && *f.File != "" && !known[*f.File] {
			log.Warn("finding references file outside diff", "finding", f.ID, "file", *f.File)
		}
	}
}
