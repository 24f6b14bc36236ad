package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/irahardianto/prreview/internal/engine/git"
	"github.com/irahardianto/prreview/internal/engine/review"
)

// Progress renders review status to an io.Writer (typically stderr).
// Output is suppressed for machine-readable formats.
type Progress struct {
	w          io.Writer
	suppressed bool
	started    time.Time
}

// NewProgress creates a progress reporter writing to w.
func NewProgress(w io.Writer, suppressed bool) *Progress {
	return &Progress{w: w, suppressed: suppressed}
}

// OnStart is called once the diff is loaded, before the model call.
func (p *Progress) OnStart(source, diff string) {
	if p == nil || p.suppressed {
		return
	}
	p.started = time.Now()
	fmt.Fprintf(p.w, "⏳ Reviewing %d file(s) from %s...\n", len(git.ChangedFiles(diff)), source)
}

// OnComplete prints the outcome line.
func (p *Progress) OnComplete(result *review.Result, err error) {
	if p == nil || p.suppressed {
		return
	}

	dur := formatDuration(time.Since(p.started))
	if err != nil {
		icon := "💥"
		if review.CategoryOf(err) == review.CategoryInputRejected {
			icon = "❌"
		}
		fmt.Fprintf(p.w, "%s Review failed  %s\n", icon, dur)
		return
	}
	fmt.Fprintf(p.w, "✅ Review complete: risk %s, %d finding(s)  %s\n", result.Risk.Level, len(result.Findings), dur)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
