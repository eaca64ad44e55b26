// Package cmdexec runs the external commands depfloor delegates to, such as
// the package manager invocation that writes new requirements back.
//
// Command templates may span several lines: lines ending in "|" or containing
// " | " form one pipeline, other lines run sequentially, and a trailing "\"
// continues a line. {{placeholder}} tokens are replaced with shell-escaped
// values before execution.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/warnings"
)

// Request describes one command template execution.
//
// Fields:
//   - Commands: Multiline command template
//   - Env: Extra environment variables; values may reference $VARS
//   - Dir: Working directory, empty for the current one
//   - Timeout: Per command group limit, 0 for none
//   - Replacements: Placeholder values; list elements are escaped one by one
//     and joined with spaces
type Request struct {
	Commands     string
	Env          map[string]string
	Dir          string
	Timeout      time.Duration
	Replacements map[string][]string
}

// ExecuteFunc is the signature of Execute.
type ExecuteFunc func(ctx context.Context, req Request) ([]byte, error)

// Execute runs a command template. Tests replace it with a fake.
var Execute ExecuteFunc = execute

// getShell returns the user's shell and the args to run a command string.
//
// SHELL is honoured so aliases and shell configuration are available, with a
// platform default otherwise.
func getShell() (shell string, args []string) {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh, []string{"-l", "-c"}
	}
	return getDefaultShell()
}

// execute runs every command group of req in order.
//
// It performs the following operations:
//   - Step 1: Reject empty templates and cancelled contexts
//   - Step 2: Substitute placeholders
//   - Step 3: Split into pipeline groups and run them one after another,
//     stopping at the first failure
//
// Returns:
//   - []byte: Stdout of the last group
//   - error: First failure, timeout or cancellation
func execute(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Commands) == "" {
		return nil, fmt.Errorf("no commands provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := applyReplacements(req.Commands, req.Replacements)
	environ := buildEnviron(req.Env)

	var lastOutput []byte
	for _, group := range parseCommandGroups(cmd) {
		if err := ctx.Err(); err != nil {
			return lastOutput, err
		}
		output, err := runGroup(ctx, group, environ, req.Dir, req.Timeout)
		if err != nil {
			return output, err
		}
		lastOutput = output
	}
	return lastOutput, nil
}

// applyReplacements substitutes {{key}} placeholders.
//
// Each element is shell-escaped on its own so that a list becomes several
// arguments. An empty list removes the placeholder instead of leaving an
// empty quoted argument.
func applyReplacements(commands string, replacements map[string][]string) string {
	result := commands
	for key, values := range replacements {
		escaped := make([]string, 0, len(values))
		for _, v := range values {
			escaped = append(escaped, shellEscape(v))
		}
		result = strings.ReplaceAll(result, "{{"+key+"}}", strings.Join(escaped, " "))
	}
	return result
}

// shellEscape quotes s for the shell unless every character is safe bare.
// Embedded single quotes become '\''.
func shellEscape(s string) string {
	if s == "" {
		return "''"
	}

	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}

	var b strings.Builder
	b.WriteByte('\'')
	b.WriteString(strings.ReplaceAll(s, "'", `'\''`))
	b.WriteByte('\'')
	return b.String()
}

// isShellSafe reports whether r needs no quoting. Comparison operators are
// not safe, so any requirement with a specifier gets quoted.
func isShellSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.' ||
		r == '/' || r == '@' || r == ':' ||
		r == '+' || r == '='
}

// parseCommandGroups splits a template into groups of piped commands.
//
// Rules:
//   - A trailing "\" joins the line with the next one
//   - A trailing "|" continues the pipeline on the next line
//   - " | " inside a line splits it outside of quotes
//   - Any other line break starts a new group
func parseCommandGroups(commands string) [][]string {
	lines := strings.Split(strings.ReplaceAll(commands, "\r\n", "\n"), "\n")

	var (
		groups  [][]string
		current []string
		cont    strings.Builder
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "\\") {
			cont.WriteString(strings.TrimSuffix(trimmed, "\\"))
			cont.WriteString(" ")
			continue
		}

		cont.WriteString(trimmed)
		full := strings.TrimSpace(cont.String())
		cont.Reset()

		if strings.HasSuffix(full, "|") {
			if part := strings.TrimSpace(strings.TrimSuffix(full, "|")); part != "" {
				current = append(current, part)
			}
			continue
		}

		if strings.Contains(full, " | ") || strings.Contains(full, "\t|\t") {
			current = append(current, splitByPipe(full)...)
		} else {
			current = append(current, full)
		}
		groups = append(groups, current)
		current = nil
	}
	if rest := strings.TrimSpace(cont.String()); rest != "" {
		current = append(current, rest)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// splitByPipe splits line on "|" characters that are not inside quotes.
func splitByPipe(line string) []string {
	var (
		parts     []string
		current   strings.Builder
		quoteChar rune
	)
	runes := []rune(line)
	for i, r := range runes {
		if (r == '"' || r == '\'') && (i == 0 || runes[i-1] != '\\') {
			switch quoteChar {
			case 0:
				quoteChar = r
			case r:
				quoteChar = 0
			}
			current.WriteRune(r)
			continue
		}
		if quoteChar == 0 && r == '|' {
			if part := strings.TrimSpace(current.String()); part != "" {
				parts = append(parts, part)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if part := strings.TrimSpace(current.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

// buildEnviron appends env to the process environment, expanding $VARS in values.
func buildEnviron(env map[string]string) []string {
	environ := os.Environ()
	for key, value := range env {
		environ = append(environ, fmt.Sprintf("%s=%s", key, os.ExpandEnv(value)))
	}
	return environ
}

// runGroup runs one pipeline through the shell with an optional timeout.
func runGroup(ctx context.Context, commands []string, environ []string, dir string, timeout time.Duration) ([]byte, error) {
	if len(commands) == 0 {
		return nil, fmt.Errorf("no commands in group")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return runShell(ctx, strings.Join(commands, " | "), environ, dir, timeout)
}

// runShell executes cmdStr in its own process group so a timeout can kill
// every child.
//
// Returns:
//   - []byte: Stdout
//   - error: Exit failure annotated with stderr (or stdout when stderr is empty)
func runShell(ctx context.Context, cmdStr string, environ []string, dir string, timeout time.Duration) ([]byte, error) {
	if strings.TrimSpace(cmdStr) == "" {
		return nil, fmt.Errorf("empty command")
	}

	shell, shellArgs := getShell()
	cmd := exec.CommandContext(ctx, shell, append(shellArgs, cmdStr)...)
	cmd.Env = environ
	if dir != "" {
		cmd.Dir = dir
	}
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	verbose.CommandExec(cmdStr, dir)
	err := cmd.Run()
	verbose.CommandResult(cmdStr, exitCode(cmd, err), stdout.String()+stderr.String())

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && timeout > 0 {
			if killErr := killProcGroup(cmd); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
				warnings.Warnf("failed to kill process group on timeout: %v", killErr)
			}
			return nil, fmt.Errorf("command timed out after %s: %w", timeout, err)
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
