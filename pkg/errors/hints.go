package errors

import (
	"strings"
)

// ErrorHint provides actionable resolution hints for common errors.
//
// Fields:
//   - Pattern: Substring to match in error message (case-insensitive)
//   - Hint: Brief description of the issue
//   - Resolution: Command or action to resolve the issue
type ErrorHint struct {
	// Pattern is a substring to match in error messages (case-insensitive).
	Pattern string

	// Hint is a brief description of the problem.
	Hint string

	// Resolution is a command or action to fix the problem.
	Resolution string
}

// CommandResolutionHints maps command names to installation instructions.
// Used when the persist command cannot be started.
var CommandResolutionHints = map[string]string{
	"uv":      "Install uv: https://docs.astral.sh/uv/getting-started/installation/",
	"pip":     "Install Python: https://python.org/downloads/",
	"python":  "Install Python: https://python.org/downloads/",
	"python3": "Install Python: https://python.org/downloads/",
	"poetry":  "Install Poetry: https://python-poetry.org/docs/#installation",
	"pdm":     "Install PDM: https://pdm-project.org/latest/#installation",
}

// CommonErrorHints maps error patterns to actionable hints.
// These are used by EnhanceErrorWithHint to add context to errors.
var CommonErrorHints = []ErrorHint{
	{
		Pattern:    "need 0 <= cooldown_months <= drop_months",
		Hint:       "Invalid support window",
		Resolution: "Use non-negative values with --cooldown-months no larger than --drop-months",
	},
	{
		Pattern:    "failed to parse manifest",
		Hint:       "pyproject.toml is not valid TOML",
		Resolution: "Validate the file with a TOML linter",
	},
	{
		Pattern:    "no [project] table",
		Hint:       "Manifest has no PEP 621 metadata",
		Resolution: "Declare dependencies under [project].dependencies",
	},
	{
		Pattern:    "failed to load config",
		Hint:       "Configuration file is invalid or not found",
		Resolution: "Run 'depfloor config --validate' to check the config, or 'depfloor config --show-defaults' for a template",
	},
	{
		Pattern:    "circuit breaker open",
		Hint:       "Registry failed repeatedly",
		Resolution: "Wait for the registry to recover, then re-run",
	},
	{
		Pattern:    "rate limited",
		Hint:       "Registry is throttling requests",
		Resolution: "Re-run later or set registry.max_retries in the config",
	},
	{
		Pattern:    "package not found",
		Hint:       "Package does not exist on the registry",
		Resolution: "Verify the dependency name in pyproject.toml",
	},
	{
		Pattern:    "no usable releases",
		Hint:       "Package has only prereleases or unparseable versions",
		Resolution: "Pin the dependency manually",
	},
	{
		Pattern:    "command timed out",
		Hint:       "Persist command took too long",
		Resolution: "Increase persist.timeout_seconds in the config",
	},
	{
		Pattern:    "executable file not found",
		Hint:       "Persist command is not installed",
		Resolution: "Install uv or use --persist inplace",
	},
	{
		Pattern:    "no such file or directory",
		Hint:       "File or directory not found",
		Resolution: "Verify the path exists and you have read permissions",
	},
	{
		Pattern:    "permission denied",
		Hint:       "Insufficient permissions",
		Resolution: "Check file permissions or run with appropriate privileges",
	},
	{
		Pattern:    "no such host",
		Hint:       "DNS resolution failed",
		Resolution: "Check network connectivity and DNS configuration",
	},
	{
		Pattern:    "connection refused",
		Hint:       "Connection refused by server",
		Resolution: "Check registry.url and that the registry is reachable",
	},
}

// GetHint returns an actionable hint for the given error.
//
// It searches the error message for known patterns in CommonErrorHints
// and returns a formatted hint if one matches.
//
// Parameters:
//   - err: The error to get a hint for
//
// Returns:
//   - string: The hint with resolution, or empty string if no hint found
func GetHint(err error) string {
	if err == nil {
		return ""
	}

	errStr := strings.ToLower(err.Error())
	for _, hint := range CommonErrorHints {
		if strings.Contains(errStr, strings.ToLower(hint.Pattern)) {
			return hint.Hint + ": " + hint.Resolution
		}
	}

	return ""
}

// GetHintForCommand returns the installation hint for a command.
//
// Parameters:
//   - cmd: The command name (e.g., "uv")
//
// Returns:
//   - string: Installation hint, or empty string if unknown command
func GetHintForCommand(cmd string) string {
	return CommandResolutionHints[cmd]
}

// EnhanceErrorWithHint adds actionable hints to an error message if a matching pattern is found.
//
// Parameters:
//   - err: The error to enhance
//
// Returns:
//   - string: Error message with hint appended if found, otherwise just the error message
func EnhanceErrorWithHint(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()
	if hint := GetHint(err); hint != "" {
		return errStr + "\n  \U0001F4A1 " + hint
	}

	return errStr
}
