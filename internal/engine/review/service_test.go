package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/irahardianto/prreview/internal/engine/llm"
	"github.com/irahardianto/prreview/internal/platform/logger"
)

const sampleDiff = "--- a/app.ts\n+++ b/app.ts\n@@ -1 +1 @@\n-let a = 1\n+const a = 1\n"

func newTestService(gw llm.Gateway, maxLen int) *Service {
	return NewService(gw, maxLen)
}

func TestCreateReview_Scenario(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult, Model: "gpt-4.1-mini-2025-04-14"}}
	svc := newTestService(gw, 200_000)

	diff := "+++ b/a.ts\n+const x = 1;\n" // 25 characters
	if len(diff) != 25 {
		t.Fatalf("fixture should be 25 characters, got %d", len(diff))
	}

	got, err := svc.CreateReview(context.Background(), Request{Diff: diff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Meta.PromptVersion != PromptVersion {
		t.Errorf("expected promptVersion %q, got %q", PromptVersion, got.Meta.PromptVersion)
	}
	if got.Meta.Model != "gpt-4.1-mini-2025-04-14" {
		t.Errorf("expected gateway model, got %q", got.Meta.Model)
	}
	if got.Summary.Overview != "ok" || got.Risk.Level != RiskLow {
		t.Errorf("unexpected body: %+v", got)
	}

	p := gw.LastPrompt()
	for _, want := range []string{"Title: N/A", "Repo Context: N/A", "Language: typescript", "Review Profile: balanced", "Diff:\n" + diff} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p.User)
		}
	}
	if p.System == "" || p.Developer == "" {
		t.Error("expected non-empty system and developer instructions")
	}
}

func TestCreateReview_MetaAlwaysOverwritten(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: fullResult, Model: "served-model"}}
	svc := newTestService(gw, 200_000)

	got, err := svc.CreateReview(context.Background(), Request{Diff: sampleDiff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Meta != (Meta{Model: "served-model", PromptVersion: PromptVersion}) {
		t.Errorf("expected server meta, got %+v", got.Meta)
	}

	// Everything except meta round-trips unchanged.
	want, _ := Validate(fullResult)
	want.Meta = got.Meta
	a, _ := json.Marshal(got)
	b, _ := json.Marshal(want)
	if !bytes.Equal(a, b) {
		t.Errorf("result changed beyond meta\nwant: %s\ngot:  %s", b, a)
	}
}

func TestCreateReview_ShortDiffRejectedBeforeCall(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult}}
	svc := newTestService(gw, 200_000)

	for _, diff := range []string{"", "short", strings.Repeat("x", MinDiffLength-1), strings.Repeat("é", MinDiffLength-1)} {
		_, err := svc.CreateReview(context.Background(), Request{Diff: diff})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("diff %q: expected ErrInvalidRequest, got %v", diff, err)
		}
	}
	if gw.Calls() != 0 {
		t.Errorf("expected no outbound calls, got %d", gw.Calls())
	}
}

func TestCreateReview_TooLargeRejectedBeforeCall(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult}}
	svc := newTestService(gw, 100)

	_, err := svc.CreateReview(context.Background(), Request{Diff: strings.Repeat("+", 101)})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if gw.Calls() != 0 {
		t.Errorf("expected no outbound calls, got %d", gw.Calls())
	}

	if _, err := svc.CreateReview(context.Background(), Request{Diff: strings.Repeat("+", 100)}); err != nil {
		t.Errorf("diff at the ceiling should pass, got %v", err)
	}
}

func TestCreateReview_CountsCharactersNotBytes(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult}}
	svc := newTestService(gw, 30)

	// 30 characters, 60 bytes.
	if _, err := svc.CreateReview(context.Background(), Request{Diff: strings.Repeat("ü", 30)}); err != nil {
		t.Errorf("expected multi-byte diff within limit to pass, got %v", err)
	}
}

func TestCreateReview_NotConfigured(t *testing.T) {
	svc := newTestService(nil, 200_000)

	_, err := svc.CreateReview(context.Background(), Request{Diff: sampleDiff})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if CategoryOf(err) != CategoryUnavailable {
		t.Errorf("expected unavailable category, got %q", CategoryOf(err))
	}
}

func TestCreateReview_InvalidProfile(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult}}
	svc := newTestService(gw, 200_000)

	_, err := svc.CreateReview(context.Background(), Request{Diff: sampleDiff, ReviewProfile: "paranoid"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateReview_PassesMetadataToPrompt(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: minimalResult, Model: "m"}}
	svc := newTestService(gw, 200_000)

	_, err := svc.CreateReview(context.Background(), Request{
		Title:         "Fix login",
		Diff:          sampleDiff,
		RepoContext:   "monorepo, auth service",
		Language:      "go",
		ReviewProfile: ProfileSecurity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := gw.LastPrompt().User
	for _, want := range []string{"Title: Fix login", "Repo Context: monorepo, auth service", "Language: go", "Review Profile: security"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestCreateReview_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		gw      *llm.MockGateway
		wantErr error
	}{
		{"upstream error", &llm.MockGateway{Err: llm.ErrUpstream}, llm.ErrUpstream},
		{"empty response", &llm.MockGateway{Err: llm.ErrEmptyResponse}, llm.ErrEmptyResponse},
		{"malformed json", &llm.MockGateway{Result: llm.Completion{Content: "nope"}}, ErrMalformedJSON},
		{"invalid shape", &llm.MockGateway{Result: llm.Completion{Content: `{"summary":{"overview":1}}`}}, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.gw, 200_000)
			got, err := svc.CreateReview(context.Background(), Request{Diff: sampleDiff})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got != nil {
				t.Error("expected nil result")
			}
			if CategoryOf(err) != CategoryUpstream {
				t.Errorf("expected upstream category, got %q", CategoryOf(err))
			}
			if tt.gw.Calls() != 1 {
				t.Errorf("expected exactly one gateway call, got %d", tt.gw.Calls())
			}
		})
	}
}

func TestCreateReview_NumericOverviewCitesSummary(t *testing.T) {
	gw := &llm.MockGateway{Result: llm.Completion{Content: `{"summary":{"overview":1},"risk":{"level":"low","rationale":[]},"findings":[],"suggestions":[],"checklist":[],"meta":{"model":"x","promptVersion":"v0"}}`}}
	svc := newTestService(gw, 200_000)

	_, err := svc.CreateReview(context.Background(), Request{Diff: sampleDiff})
	var shape *ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected *ShapeError, got %v", err)
	}
	if !strings.HasPrefix(shape.Field, "summary") {
		t.Errorf("expected violation in summary, got %q", shape.Field)
	}
}

func TestCreateReview_LogsUnknownFiles(t *testing.T) {
	content := strings.Replace(fullResult, `"file": "client.ts"`, `"file": "elsewhere.ts"`, 1)
	gw := &llm.MockGateway{Result: llm.Completion{Content: content, Model: "m"}}
	svc := newTestService(gw, 200_000)

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf, false, false))

	got, err := svc.CreateReview(ctx, Request{Diff: sampleDiff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Findings) != 2 {
		t.Errorf("findings must not be dropped, got %d", len(got.Findings))
	}
	if !strings.Contains(buf.String(), "finding references file outside diff") {
		t.Errorf("expected warning in logs, got:\n%s", buf.String())
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCategory
	}{
		{ErrInvalidRequest, CategoryInputRejected},
		{ErrPayloadTooLarge, CategoryInputRejected},
		{ErrNotConfigured, CategoryUnavailable},
		{ErrMalformedJSON, CategoryUpstream},
		{&ShapeError{Field: "risk", Reason: "Invalid risk"}, CategoryUpstream},
		{llm.ErrUpstream, CategoryUpstream},
		{errors.New("anything else"), CategoryUpstream},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.err); got != tt.want {
			t.Errorf("CategoryOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
