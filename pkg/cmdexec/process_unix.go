//go:build unix

package cmdexec

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the command in a new process group.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcGroup sends SIGKILL to the whole process group of cmd so that
// children of a timed-out uv invocation do not linger.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
