package display

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress reports how many requirements have been resolved.
//
// A nil or disabled Progress ignores every call, so callers never need to
// check whether progress output is wanted.
type Progress struct {
	bar         *progressbar.ProgressBar
	description string
}

// NewProgress creates a progress bar writing to w.
//
// Parameters:
//   - w: Writer to output progress to (typically os.Stderr)
//   - total: Total number of items to process
//   - description: Text shown before the bar (e.g., "Resolving floors")
//
// Returns:
//   - *Progress: A progress bar ready for use
func NewProgress(w io.Writer, total int, description string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(w, "\r")
		}),
	)
	return &Progress{bar: bar, description: description}
}

// NewDisabledProgress creates a progress indicator that produces no output.
//
// Use this for JSON output, --no-progress and tests.
func NewDisabledProgress() *Progress {
	return &Progress{}
}

// Enabled reports whether the progress bar renders anything.
func (p *Progress) Enabled() bool {
	return p != nil && p.bar != nil
}

// Set moves the bar to done items and labels it with the current item.
func (p *Progress) Set(done int, current string) {
	if !p.Enabled() {
		return
	}
	if current != "" {
		p.bar.Describe(fmt.Sprintf("%s: %s", p.description, current))
	}
	_ = p.bar.Set(done)
}

// Done completes the bar and clears it from the terminal.
func (p *Progress) Done() {
	if !p.Enabled() {
		return
	}
	_ = p.bar.Finish()
}
