// Package verbose provides debug tracing for depfloor.
//
// Tracing is off by default and enabled by the --verbose flag. Every line is
// written to the configured writer (stderr by default) with a [DEBUG] prefix.
// The domain helpers keep trace lines consistent across packages: releases
// dropped by the classifier, HTTP requests made to the registry, the window
// dates used by the selector, and the commands run to persist the manifest.
package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	enabled bool
	writer  io.Writer = os.Stderr
)

// Enable turns on debug output.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// Disable turns off debug output.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// IsEnabled reports whether debug output is on.
//
// Returns:
//   - bool: true when --verbose was given
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetWriter sets the destination for debug output.
//
// A nil writer is ignored so tests cannot accidentally silence a panic path.
//
// Parameters:
//   - w: The writer to use for subsequent output
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		writer = w
	}
}

func getWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

// Printf writes a formatted debug line.
//
// Parameters:
//   - format: Printf-style format string, without trailing newline
//   - args: Format arguments
func Printf(format string, args ...any) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] "+format+"\n", args...)
	}
}

// Info writes a single debug message.
func Info(msg string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s\n", msg)
	}
}

// ReleaseDropped traces a registry entry the classifier discarded.
//
// Parameters:
//   - pkg: Package name
//   - raw: The raw version or timestamp that was rejected
//   - reason: Why it was rejected (invalid version, prerelease, bad timestamp)
func ReleaseDropped(pkg, raw, reason string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s: excluding %q: %s\n", pkg, raw, reason)
	}
}

// HTTPRequest traces a completed registry request.
//
// Parameters:
//   - method: HTTP method
//   - url: Request URL
//   - status: Response status code, 0 when the request failed before a response
//   - elapsed: Round-trip duration
func HTTPRequest(method, url string, status int, elapsed time.Duration) {
	if !IsEnabled() {
		return
	}
	w := getWriter()
	if status == 0 {
		_, _ = fmt.Fprintf(w, "[DEBUG] %s %s failed after %s\n", method, url, elapsed.Round(time.Millisecond))
		return
	}
	_, _ = fmt.Fprintf(w, "[DEBUG] %s %s -> %d (%s)\n", method, url, status, elapsed.Round(time.Millisecond))
}

// WindowDates traces the boundaries the floor selector computed.
//
// Parameters:
//   - pkg: Package name
//   - dropDate: Oldest date still inside the support window
//   - cooldownDate: Date after which series are unconditionally kept
func WindowDates(pkg string, dropDate, cooldownDate time.Time) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s: drop date %s, cooldown date %s\n",
			pkg, dropDate.Format(time.DateOnly), cooldownDate.Format(time.DateOnly))
	}
}

// FloorSelected traces the floor chosen for a package.
//
// Parameters:
//   - pkg: Package name
//   - floor: Rendered floor version
//   - reason: Which rule produced it
func FloorSelected(pkg, floor, reason string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s: floor %s (%s)\n", pkg, floor, reason)
	}
}

// ConfigLoaded traces where the configuration came from.
//
// Parameters:
//   - path: Path of the loaded file, empty when only the embedded defaults were used
func ConfigLoaded(path string) {
	if !IsEnabled() {
		return
	}
	if path == "" {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Using built-in defaults (no .depfloor.yml found)\n")
		return
	}
	_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Loaded config: %s\n", path)
}

// CommandExec traces a command about to be executed.
//
// Parameters:
//   - cmd: The command line after placeholder replacement
//   - workDir: Working directory for the command
func CommandExec(cmd, workDir string) {
	if IsEnabled() {
		w := getWriter()
		_, _ = fmt.Fprintf(w, "[DEBUG] Executing: %s\n", cmd)
		_, _ = fmt.Fprintf(w, "        Working dir: %s\n", workDir)
	}
}

// CommandResult traces the outcome of an executed command.
//
// Output longer than five lines is cut to its first three.
//
// Parameters:
//   - cmd: The command line
//   - exitCode: Process exit code
//   - output: Combined output of the command
func CommandResult(cmd string, exitCode int, output string) {
	if !IsEnabled() {
		return
	}
	w := getWriter()
	if exitCode == 0 {
		_, _ = fmt.Fprintf(w, "[DEBUG] Command succeeded: %s\n", truncate(cmd, 60))
	} else {
		_, _ = fmt.Fprintf(w, "[DEBUG] Command failed (exit %d): %s\n", exitCode, truncate(cmd, 60))
	}
	if strings.TrimSpace(output) == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		for _, line := range lines[:3] {
			_, _ = fmt.Fprintf(w, "        | %s\n", truncate(line, 100))
		}
		_, _ = fmt.Fprintf(w, "        | ... (%d more lines)\n", len(lines)-3)
		return
	}
	for _, line := range lines {
		_, _ = fmt.Fprintf(w, "        | %s\n", truncate(line, 100))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
