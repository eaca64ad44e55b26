package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/testutil"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

// TestExecuteWithExitCodes tests the behavior of Execute with different exit codes.
//
// It verifies:
//   - Successful commands do not call exitFunc
//   - Unknown commands exit with ExitFailure
//   - Partial success exits with ExitPartialFailure
//   - Configuration errors exit with ExitConfigError
//   - Errors are printed to stderr
func TestExecuteWithExitCodes(t *testing.T) {
	p := newTestProject(t, "inplace")

	oldExit := exitFunc
	t.Cleanup(func() { exitFunc = oldExit })

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "success", args: []string{"floor", "numpy"}, want: -1},
		{name: "unknown command", args: []string{"nonexistent-subcommand-xyz"}, want: errors.ExitFailure},
		{name: "partial success", args: []string{"floor", "numpy", "no-such-package"}, want: errors.ExitPartialFailure},
		{name: "config error", args: []string{"floor", "numpy", "--drop-months", "1"}, want: errors.ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode := -1
			exitFunc = func(code int) { exitCode = code }

			resetCommandFlags()
			rootCmd.SetArgs(append([]string{"--skip-build-checks"}, tt.args...))
			_, stderr := testutil.CaptureOutput(t, Execute)

			assert.Equal(t, tt.want, exitCode)
			if tt.want > 0 {
				assert.NotEmpty(t, stderr)
			}
		})
	}
	assert.NotZero(t, p.index.Requests())
}

// TestRootVersionFlag tests -v on the root command.
func TestRootVersionFlag(t *testing.T) {
	newTestProject(t, "inplace")

	stdout, _, err := runCommand(t, "-v")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Version: "+Version)
}

// TestVerboseFlag tests that --verbose traces to stderr.
func TestVerboseFlag(t *testing.T) {
	newTestProject(t, "inplace")
	var buf bytes.Buffer
	verbose.SetWriter(&buf)
	t.Cleanup(func() { verbose.SetWriter(os.Stderr) })

	_, _, err := runCommand(t, "--verbose", "floor", "numpy")
	assert.NoError(t, err)
	assert.True(t, verbose.IsEnabled())
	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "/simple/numpy/")
}
