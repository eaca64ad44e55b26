package preflight

import (
	"os"
	"strings"
)

// getShellCommandCheck returns the shell and args for checking if a command exists.
//
// The user's login shell runs 'command -v', so aliases and functions defined
// in its profile count as available. Falls back to "sh" if SHELL is unset.
//
// Parameters:
//   - cmd: The command name to check for existence
//
// Returns:
//   - shell: The shell executable to use
//   - args: Arguments running 'command -v' on the single-quoted name
func getShellCommandCheck(cmd string) (shell string, args []string) {
	shell = os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	quoted := "'" + strings.ReplaceAll(cmd, "'", `'\''`) + "'"
	return shell, []string{"-l", "-c", "command -v " + quoted}
}
