// Package warnings carries non-fatal diagnostics such as a floor that could not
// be merged into an existing specifier. Warnings never change the exit status.
package warnings

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu         sync.RWMutex
	warnWriter io.Writer = os.Stderr
	emitted    int
)

// Warnf writes one warning line to the configured warning writer.
//
// A trailing newline is added when the format does not end with one, so
// callers can pass plain sentences.
//
// Parameters:
//   - format: Printf-style format string for the warning message
//   - args: Variadic arguments to format into the string
func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	mu.Lock()
	w := warnWriter
	emitted++
	mu.Unlock()

	_, _ = io.WriteString(w, msg)
}

// Count returns how many warnings were emitted since the last Reset.
//
// Returns:
//   - int: Number of Warnf calls
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return emitted
}

// Reset zeroes the warning counter.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	emitted = 0
}

// WarningWriter returns the currently configured warning writer.
//
// Returns:
//   - io.Writer: The currently configured writer for warning messages
func WarningWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return warnWriter
}

// SetWarningWriter swaps the warning writer and returns a restore function.
//
// Parameters:
//   - w: The new io.Writer to use; if nil, defaults to os.Stderr
//
// Returns:
//   - func(): A restore function that sets the writer back to the previous value
func SetWarningWriter(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()

	previous := warnWriter
	if w == nil {
		warnWriter = os.Stderr
	} else {
		warnWriter = w
	}

	return func() {
		mu.Lock()
		defer mu.Unlock()
		warnWriter = previous
	}
}
