package warnings

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSetWarningWriterRestoresAndCaptures tests the behavior of SetWarningWriter.
//
// It verifies:
//   - Original writer is restored after calling restore function
//   - Warning messages are captured by the new writer
//   - nil writer defaults to os.Stderr
func TestSetWarningWriterRestoresAndCaptures(t *testing.T) {
	original := WarningWriter()

	var buf bytes.Buffer
	restore := SetWarningWriter(&buf)
	Warnf("cannot merge %s into %q", ">=2.5", "<2.0")
	restore()

	assert.Equal(t, original, WarningWriter())
	assert.Equal(t, "cannot merge >=2.5 into \"<2.0\"\n", buf.String())

	restore = SetWarningWriter(nil)
	assert.Equal(t, os.Stderr, WarningWriter())
	restore()
}

// TestWarnfNewline tests newline handling.
//
// It verifies:
//   - A message that already ends in a newline is not doubled
func TestWarnfNewline(t *testing.T) {
	var buf bytes.Buffer
	restore := SetWarningWriter(&buf)
	defer restore()

	Warnf("done\n")
	assert.Equal(t, "done\n", buf.String())
}

// TestCount tests the warning counter.
//
// It verifies:
//   - Each Warnf increments the counter
//   - Reset zeroes it
func TestCount(t *testing.T) {
	var buf bytes.Buffer
	restore := SetWarningWriter(&buf)
	defer restore()

	Reset()
	Warnf("one")
	Warnf("two")
	assert.Equal(t, 2, Count())

	Reset()
	assert.Equal(t, 0, Count())
}
