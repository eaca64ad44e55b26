package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ajxudir/depfloor/pkg/constants"
	"github.com/ajxudir/depfloor/pkg/output"
)

var (
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	faintColor   = color.New(color.Faint)
)

// PrintWarnings prints warning messages to the writer.
//
// Formats each warning on its own line with a warning icon prefix.
// Does nothing if warnings slice is empty.
// Prints a blank line before the warnings for separation.
//
// Parameters:
//   - w: Writer to output to (typically os.Stderr)
//   - warnings: Slice of warning messages
//
// Example output:
//
//	<blank line>
//	⚠️ numpy: cannot raise floor of "numpy<1.1" to 1.2
func PrintWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for _, warning := range warnings {
		_, _ = warnColor.Fprintf(w, "%s %s\n", constants.IconWarn, warning)
	}
}

// PrintErrors prints failure messages, one per line, with an error icon.
//
// Parameters:
//   - w: Writer to output to (typically os.Stderr)
//   - errs: Failure messages
func PrintErrors(w io.Writer, errs []string) {
	if len(errs) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for _, msg := range errs {
		_, _ = errorColor.Fprintf(w, "%s %s\n", constants.IconError, msg)
	}
}

// PrintWindow prints the retention window a result was computed with.
//
// Example output:
//
//	Window: drop 24 months (2024-01-01), cooldown 12 months (2025-01-01)
func PrintWindow(w io.Writer, win output.WindowInfo) {
	_, _ = faintColor.Fprintf(w, "Window: drop %s months (%s), cooldown %s months (%s)\n",
		FormatMonths(win.DropMonths), FormatDate(win.DropDate),
		FormatMonths(win.CooldownMonths), FormatDate(win.CooldownDate))
}

// PrintSummary prints a bump summary.
//
// Zero counts other than the total are omitted.
//
// Parameters:
//   - w: Writer to output to
//   - summary: Summary data to display
//   - persisted: Whether the changes were written; selects "updated" or "planned"
//
// Example output:
//
//	Summary: 10 total, 6 updated, 2 unchanged, 1 fallback, 1 skipped
func PrintSummary(w io.Writer, summary output.BumpSummary, persisted bool) {
	parts := []string{fmt.Sprintf("%d total", summary.Total)}
	verb := "planned"
	if persisted {
		verb = "updated"
	}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(summary.Updated, verb)
	add(summary.Unchanged, "unchanged")
	add(summary.Fallback, "fallback")
	add(summary.Skipped, "skipped")
	add(summary.Failed, "failed")

	line := "Summary: " + strings.Join(parts, ", ")
	if summary.Failed > 0 {
		_, _ = errorColor.Fprintln(w, line)
		return
	}
	_, _ = successColor.Fprintln(w, line)
}

// PrintNoDependenciesMessage prints a "no dependencies" message for a manifest.
//
// Example output:
//
//	No dependencies declared in pyproject.toml
func PrintNoDependenciesMessage(w io.Writer, manifest string) {
	_, _ = fmt.Fprintf(w, "No dependencies declared in %s\n", manifest)
}

// WarningCollector captures warnings for deferred output.
//
// Implements io.Writer so it can be used as a warning sink.
// Warnings are collected and can be printed later using Messages().
//
// Example:
//
//	collector := display.NewWarningCollector()
//	restore := warnings.SetWarningWriter(collector)
//	defer restore()
//	// ... operations that may produce warnings ...
//	display.PrintWarnings(os.Stderr, collector.Messages())
type WarningCollector struct {
	messages []string
}

// NewWarningCollector creates a new WarningCollector.
func NewWarningCollector() *WarningCollector {
	return &WarningCollector{}
}

// Write implements io.Writer for capturing warning messages.
//
// Splits input on newlines and stores non-empty trimmed lines.
//
// Returns:
//   - int: Number of bytes written (always len(p))
//   - error: Always nil
func (c *WarningCollector) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			c.messages = append(c.messages, trimmed)
		}
	}
	return len(p), nil
}

// Messages returns a copy of all collected warning messages.
func (c *WarningCollector) Messages() []string {
	copied := make([]string, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Reset clears all collected messages.
func (c *WarningCollector) Reset() {
	c.messages = nil
}
