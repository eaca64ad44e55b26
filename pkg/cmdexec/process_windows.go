//go:build windows

package cmdexec

import (
	"os/exec"
)

// setProcGroup is a no-op on Windows; exec.CommandContext terminates the process.
func setProcGroup(cmd *exec.Cmd) {}

// killProcGroup kills the process itself.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
