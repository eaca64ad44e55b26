package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExitCodes tests the exit code constants.
//
// It verifies:
//   - ExitSuccess equals 0
//   - ExitPartialFailure equals 1
//   - ExitFailure equals 2
//   - ExitConfigError equals 3
func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitPartialFailure)
	assert.Equal(t, 2, ExitFailure)
	assert.Equal(t, 3, ExitConfigError)
}

// TestExitError tests the ExitError struct and its methods.
//
// It verifies:
//   - Error() returns the Message field when set
//   - Error() returns wrapped error message when Err is set
//   - Error() returns "exit code N" when neither is set
//   - Unwrap() returns the wrapped error
func TestExitError(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		err := &ExitError{Code: ExitFailure, Message: "test message"}
		assert.Equal(t, "test message", err.Error())
	})

	t.Run("with wrapped error", func(t *testing.T) {
		innerErr := stderrors.New("inner error")
		err := NewExitError(ExitConfigError, innerErr)
		assert.Equal(t, "inner error", err.Error())
		assert.Equal(t, innerErr, err.Unwrap())
	})

	t.Run("with neither", func(t *testing.T) {
		err := &ExitError{Code: ExitPartialFailure}
		assert.Contains(t, err.Error(), "exit code 1")
	})

	t.Run("formatted", func(t *testing.T) {
		err := NewExitErrorf(ExitFailure, "failed %d", 3)
		assert.Equal(t, "failed 3", err.Error())
	})
}

// TestGetExitCode tests exit code extraction.
//
// It verifies:
//   - nil maps to ExitSuccess
//   - ExitError codes pass through, even when wrapped
//   - Invalid parameters and validation errors map to ExitConfigError
//   - Partial success maps to ExitPartialFailure
//   - Plain and dependency errors map to ExitFailure
func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", NewExitError(ExitConfigError, nil), ExitConfigError},
		{"wrapped exit error", fmt.Errorf("ctx: %w", NewExitError(ExitPartialFailure, nil)), ExitPartialFailure},
		{"invalid parameter", &InvalidParameterError{DropMonths: 4, CooldownMonths: 5}, ExitConfigError},
		{"validation", NewConfigValidationError("registry.api", "bad"), ExitConfigError},
		{"partial", NewPartialSuccessError(2, 1, nil), ExitPartialFailure},
		{"dependency", NewDependencyError("numpy", stderrors.New("boom")), ExitFailure},
		{"plain", stderrors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

// TestDependencyError tests the DependencyError type.
//
// It verifies:
//   - The message names the dependency and the cause
//   - errors.Is reaches the wrapped sentinel
//   - IsDependencyError finds it through additional wrapping
func TestDependencyError(t *testing.T) {
	sentinel := stderrors.New("upstream registry unavailable")
	err := NewDependencyError("astropy", sentinel)

	assert.Equal(t, "unable to update package 'astropy': upstream registry unavailable", err.Error())
	assert.True(t, stderrors.Is(err, sentinel))

	wrapped := fmt.Errorf("bump: %w", err)
	de, ok := IsDependencyError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "astropy", de.Name)

	_, ok = IsDependencyError(sentinel)
	assert.False(t, ok)
}

// TestInvalidParameterError tests the InvalidParameterError type.
//
// It verifies:
//   - errors.Is matches ErrInvalidParameter
//   - The message reports both values
func TestInvalidParameterError(t *testing.T) {
	err := &InvalidParameterError{DropMonths: 4, CooldownMonths: 5}

	assert.True(t, stderrors.Is(err, ErrInvalidParameter))
	assert.True(t, IsInvalidParameter(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsInvalidParameter(stderrors.New("other")))
	assert.Contains(t, err.Error(), "drop_months=4")
	assert.Contains(t, err.Error(), "cooldown_months=5")
}

// TestUnsupportedError tests the UnsupportedError message variants.
//
// It verifies:
//   - Package, operation and reason are all used when present
//   - The message degrades gracefully when fields are empty
func TestUnsupportedError(t *testing.T) {
	assert.Equal(t, "pkg: bump not supported: direct URL requirement",
		NewUnsupportedError("bump", "direct URL requirement", "pkg").Error())
	assert.Equal(t, "bump not supported: why",
		(&UnsupportedError{Operation: "bump", Reason: "why"}).Error())
	assert.Equal(t, "why", (&UnsupportedError{Reason: "why"}).Error())

	_, ok := IsUnsupportedError(NewUnsupportedError("bump", "x", "y"))
	assert.True(t, ok)
}

// TestValidationError tests ValidationError formatting.
//
// It verifies:
//   - Field and message are joined
//   - Valid keys are listed
func TestValidationError(t *testing.T) {
	err := NewConfigValidationError("persist.mode", "unknown mode \"git\"", "command", "inplace")
	assert.Equal(t, `persist.mode: unknown mode "git" (valid: command, inplace)`, err.Error())

	err = &ValidationError{Message: "bad"}
	assert.Equal(t, "bad", err.Error())
}

// TestHints tests hint lookup.
//
// It verifies:
//   - Known patterns produce hints
//   - Unknown errors produce no hint
//   - Command hints cover uv
func TestHints(t *testing.T) {
	err := &InvalidParameterError{DropMonths: 1, CooldownMonths: 2}
	assert.Contains(t, GetHint(err), "Invalid support window")
	assert.Contains(t, EnhanceErrorWithHint(err), "\U0001F4A1")

	assert.Empty(t, GetHint(stderrors.New("something else")))
	assert.Equal(t, "something else", EnhanceErrorWithHint(stderrors.New("something else")))
	assert.Empty(t, GetHint(nil))
	assert.Empty(t, EnhanceErrorWithHint(nil))

	assert.Contains(t, GetHintForCommand("uv"), "astral")
	assert.Empty(t, GetHintForCommand("nope"))
}

// TestPrintErrorWithHints tests error display.
//
// It verifies:
//   - Validation, unsupported, partial and plain errors each get their prefix
//   - Verbose mode lists the failures of a partial success
//   - nil entries are skipped
func TestPrintErrorWithHints(t *testing.T) {
	var buf bytes.Buffer
	partial := NewPartialSuccessError(1, 1, []error{NewDependencyError("numpy", stderrors.New("rate limited by upstream"))})

	PrintErrorWithHints(&buf, []error{
		NewConfigValidationError("registry.api", "bad"),
		NewUnsupportedError("bump", "direct URL requirement", "pkg"),
		partial,
		stderrors.New("plain"),
		nil,
	}, true)

	out := buf.String()
	assert.Contains(t, out, "Validation Error: registry.api: bad")
	assert.Contains(t, out, "Unsupported: pkg: bump not supported")
	assert.Contains(t, out, "Partial Success: 1 succeeded, 1 failed")
	assert.Contains(t, out, "Failed dependencies:")
	assert.Contains(t, out, "numpy")
	assert.Contains(t, out, "Error: plain")
}
