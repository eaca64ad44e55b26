// Package testutil provides shared test utilities for depfloor packages:
// output capture, config builders, a fake package index and manifest fixtures.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// CaptureStdout captures stdout during the execution of fn and returns the output as a string.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function to execute while capturing stdout
//
// Returns:
//   - string: All content written to stdout during fn execution
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	out, _ := CaptureOutput(t, fn)
	return out
}

// CaptureStderr captures stderr during the execution of fn and returns the output as a string.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	_, errOut := CaptureOutput(t, fn)
	return errOut
}

// CaptureOutput captures both stdout and stderr during the execution of fn.
//
// Both pipes are drained concurrently so fn cannot block on a full pipe.
// The original streams are restored even if fn panics.
//
// Returns:
//   - stdout: All content written to stdout during fn execution
//   - stderr: All content written to stderr during fn execution
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	outC := drain(rOut)
	errC := drain(rErr)

	os.Stdout, os.Stderr = wOut, wErr
	func() {
		defer func() {
			os.Stdout, os.Stderr = oldStdout, oldStderr
			_ = wOut.Close()
			_ = wErr.Close()
		}()
		fn()
	}()

	return <-outC, <-errC
}

func drain(r *os.File) <-chan string {
	c := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		c <- buf.String()
	}()
	return c
}
