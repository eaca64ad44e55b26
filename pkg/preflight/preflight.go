// Package preflight checks that the persist command can run before any
// dependency is resolved.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ajxudir/depfloor/pkg/verbose"
)

// CommandResolutionHints maps command names to installation instructions.
//
// Keys are command names, values are human-readable installation instructions with URLs.
var CommandResolutionHints = map[string]string{
	// Package managers
	"uv":      "Install uv: https://docs.astral.sh/uv/getting-started/installation/",
	"pip":     "Install Python: https://python.org/downloads/",
	"pip3":    "Install Python: https://python.org/downloads/",
	"python":  "Install Python: https://python.org/downloads/",
	"python3": "Install Python: https://python.org/downloads/",
	"pipenv":  "Install pipenv: pipx install pipenv, or pip install --user pipenv",
	"poetry":  "Install Poetry: https://python-poetry.org/docs/#installation",
	"pdm":     "Install PDM: https://pdm-project.org/en/latest/#installation",
	"hatch":   "Install Hatch: https://hatch.pypa.io/latest/install/",

	// Common Unix tools (pre-installed on Linux/macOS)
	"grep":  "Unix tool - typically pre-installed on Linux/macOS",
	"sed":   "Unix tool - typically pre-installed on Linux/macOS",
	"xargs": "Unix tool - typically pre-installed on Linux/macOS",
}

// ValidationError represents a missing command with resolution hints.
//
// Fields:
//   - Command: The name of the missing command
//   - Hint: Installation instructions (empty if no hint available)
type ValidationError struct {
	Command string
	Hint    string
}

// Error returns a formatted error message with resolution instructions.
//
// Returns:
//   - string: Formatted error message including command name and resolution instructions
func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("command not found: %s\n  Resolution: %s", e.Command, e.Hint)
	}
	return fmt.Sprintf("command not found: %s\n  Resolution: Ensure '%s' is installed and available in your PATH,\n              or set persist.mode to inplace.", e.Command, e.Command)
}

// ValidateResult holds the result of pre-flight validation.
//
// Fields:
//   - Errors: Missing commands, in order of first appearance
type ValidateResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are validation errors.
func (r *ValidateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage returns a formatted error message for all validation errors.
//
// Returns:
//   - string: Multi-line message with header and one entry per error; empty string if no errors
func (r *ValidateResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Pre-flight validation failed:\n")
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateCommand checks that every executable a persist command template
// invokes is available.
//
// It performs the following operations:
//   - Extracts the command name of every line and pipe segment
//   - Validates that each unique command exists in PATH or as a shell alias
//   - Collects validation errors with resolution hints for missing commands
//
// Parameters:
//   - template: Persist command template, e.g. "uv add --no-sync {{requirements}}"
//
// Returns:
//   - *ValidateResult: Result containing any validation errors; never nil
func ValidateCommand(template string) *ValidateResult {
	result := &ValidateResult{}
	commands := extractCommands(template)
	verbose.Printf("Preflight: checking %d commands", len(commands))

	for _, cmd := range commands {
		if err := validateCommand(cmd); err != nil {
			result.Errors = append(result.Errors, *err)
		}
	}
	return result
}

// extractCommands extracts all command names from a multiline commands string.
//
// It performs the following operations:
//   - Normalizes line endings (CRLF to LF)
//   - Skips empty lines and comment lines (starting with #)
//   - Handles line continuation backslashes
//   - Splits piped commands (separated by |)
//   - Takes the first word of each segment, skipping VAR=value assignments
//     and template placeholders
//   - Deduplicates command names
//
// Parameters:
//   - commands: Multi-line shell commands
//
// Returns:
//   - []string: Unique command names in order of first appearance
func extractCommands(commands string) []string {
	var result []string
	seen := make(map[string]bool)

	normalized := strings.ReplaceAll(strings.TrimSpace(commands), "\r\n", "\n")
	continued := false
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		wasContinued := continued
		continued = strings.HasSuffix(line, "\\")
		if wasContinued || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "\\"))

		for _, part := range strings.Split(line, "|") {
			if cmd := commandName(part); cmd != "" && !seen[cmd] {
				seen[cmd] = true
				result = append(result, cmd)
			}
		}
	}

	return result
}

// commandName returns the executable a shell segment starts with.
func commandName(segment string) string {
	for _, field := range strings.Fields(segment) {
		if strings.HasPrefix(field, "{{") {
			return ""
		}
		if strings.Contains(field, "=") {
			continue
		}
		return field
	}
	return ""
}

// validateCommand checks if a command exists in PATH or as a shell alias.
//
// Parameters:
//   - cmd: The command name to validate (e.g., "uv", "pip")
//
// Returns:
//   - *ValidationError: Error with resolution hint if command not found; nil if it exists
func validateCommand(cmd string) *ValidationError {
	if cmd == "" {
		return nil
	}

	if _, err := exec.LookPath(cmd); err == nil {
		return nil
	}

	verbose.Printf("Preflight: command %q not in PATH, checking shell aliases", cmd)
	if commandExistsInShell(cmd) {
		return nil
	}

	hint := CommandResolutionHints[cmd]
	verbose.Printf("Preflight ERROR: command %q not found", cmd)
	return &ValidationError{
		Command: cmd,
		Hint:    hint,
	}
}

// commandExistsInShell checks if a command exists through the user's shell,
// which also finds aliases and functions exec.LookPath cannot see.
func commandExistsInShell(cmd string) bool {
	shell, args := getShellCommandCheck(cmd)
	return exec.Command(shell, args...).Run() == nil
}

// GetResolutionHint returns the installation hint for a command, if available.
func GetResolutionHint(cmd string) string {
	return CommandResolutionHints[cmd]
}
