package errors

import (
	"errors"
	"fmt"
)

// Exit codes let scripts tell a partial run from a failed or misconfigured one.
const (
	// ExitSuccess indicates all operations completed successfully.
	ExitSuccess = 0

	// ExitPartialFailure indicates some dependencies failed but others resolved.
	// Only reachable with --continue-on-fail; the default policy aborts instead.
	ExitPartialFailure = 1

	// ExitFailure indicates a dependency failed or a critical error occurred.
	ExitFailure = 2

	// ExitConfigError indicates a configuration or parameter error.
	// The command could not proceed due to invalid config or window parameters.
	ExitConfigError = 3
)

// ExitError ends a command with a specific exit code.
//
// Fields:
//   - Code: One of the Exit* constants
//   - Message: Replaces the wrapped error's text when set
//   - Err: Underlying cause, may be nil
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
//
// Returns the Message field if set, otherwise returns the underlying error's
// message, or a default message with the exit code.
//
// Returns:
//   - string: The error message
func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As support.
//
// Returns:
//   - error: The wrapped error, may be nil
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and underlying error.
//
// Parameters:
//   - code: Exit code for the command
//   - err: Underlying error
//
// Returns:
//   - *ExitError: New exit error
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// NewExitErrorf creates an ExitError with a formatted message.
//
// Parameters:
//   - code: Exit code for the command
//   - format: Printf-style format string
//   - args: Format arguments
//
// Returns:
//   - *ExitError: New exit error with formatted message
func NewExitErrorf(code int, format string, args ...interface{}) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
//
// Invalid window parameters and configuration validation errors map to
// ExitConfigError, partial success maps to ExitPartialFailure, anything
// else that is not an ExitError maps to ExitFailure.
//
// Parameters:
//   - err: The error to inspect, may be nil
//
// Returns:
//   - int: Exit code for the error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if IsInvalidParameter(err) {
		return ExitConfigError
	}
	if _, ok := IsValidationError(err); ok {
		return ExitConfigError
	}
	if _, ok := IsPartialSuccess(err); ok {
		return ExitPartialFailure
	}

	return ExitFailure
}

// PartialSuccessError indicates some dependencies resolved while others failed.
//
// Only produced when the caller opted into the continue-on-fail policy.
// The failed dependencies keep their original requirement strings.
//
// Fields:
//   - Succeeded: Number of dependencies that resolved
//   - Failed: Number of dependencies that failed
//   - Errors: The per-dependency errors, in declared order
type PartialSuccessError struct {
	Succeeded int
	Failed    int
	Errors    []error
}

// Error implements the error interface.
//
// Returns a summary message in the format "X succeeded, Y failed".
//
// Returns:
//   - string: Summary of succeeded and failed counts
func (e *PartialSuccessError) Error() string {
	return fmt.Sprintf("%d succeeded, %d failed", e.Succeeded, e.Failed)
}

// NewPartialSuccessError creates a PartialSuccessError with the given counts and errors.
//
// Parameters:
//   - succeeded: Number of successful dependencies
//   - failed: Number of failed dependencies
//   - errs: Slice of errors from failed dependencies
//
// Returns:
//   - *PartialSuccessError: New partial success error
func NewPartialSuccessError(succeeded, failed int, errs []error) *PartialSuccessError {
	return &PartialSuccessError{
		Succeeded: succeeded,
		Failed:    failed,
		Errors:    errs,
	}
}

// IsPartialSuccess checks if err is a PartialSuccessError and returns it.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - *PartialSuccessError: The PartialSuccessError if err is one, nil otherwise
//   - bool: true if err is a PartialSuccessError
func IsPartialSuccess(err error) (*PartialSuccessError, bool) {
	var pse *PartialSuccessError
	if errors.As(err, &pse) {
		return pse, true
	}
	return nil, false
}

// DependencyError attaches a dependency name to the error that stopped it.
//
// The bump orchestrator wraps every per-dependency failure (registry,
// classification, selection) in a DependencyError so the caller can report
// which requirement aborted the run.
//
// Fields:
//   - Name: Declared name of the dependency
//   - Err: The underlying failure
type DependencyError struct {
	// Name is the dependency name as declared in the manifest.
	Name string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
//
// Returns:
//   - string: Message in the form "unable to update package 'name': cause"
func (e *DependencyError) Error() string {
	return fmt.Sprintf("unable to update package '%s': %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
//
// Returns:
//   - error: The wrapped failure
func (e *DependencyError) Unwrap() error {
	return e.Err
}

// NewDependencyError wraps err with the dependency name.
//
// Parameters:
//   - name: Dependency name
//   - err: Underlying failure
//
// Returns:
//   - *DependencyError: New dependency error
func NewDependencyError(name string, err error) *DependencyError {
	return &DependencyError{Name: name, Err: err}
}

// IsDependencyError checks if err is a DependencyError and returns it.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - *DependencyError: The DependencyError if err is one, nil otherwise
//   - bool: true if err is a DependencyError
func IsDependencyError(err error) (*DependencyError, bool) {
	var de *DependencyError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ErrInvalidParameter is the sentinel matched by every InvalidParameterError.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError reports window parameters that violate 0 <= cooldown <= drop.
//
// Fields:
//   - DropMonths: The drop window supplied by the caller
//   - CooldownMonths: The cooldown supplied by the caller
type InvalidParameterError struct {
	DropMonths     float64
	CooldownMonths float64
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("need 0 <= cooldown_months <= drop_months (got drop_months=%g, cooldown_months=%g)",
		e.DropMonths, e.CooldownMonths)
}

// Is makes errors.Is(err, ErrInvalidParameter) match.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// IsInvalidParameter reports whether err is, or wraps, an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

// UnsupportedError indicates a requirement cannot be bumped.
//
// Use this when a requirement's form makes a lower bound meaningless,
// such as direct URL references.
//
// Fields:
//   - Operation: The operation that was attempted ("bump")
//   - Reason: Why the operation is not supported
//   - Package: Name of the package
type UnsupportedError struct {
	Operation string
	Reason    string
	Package   string
}

// Error implements the error interface.
//
// Formats the error message based on available fields. If Package is set,
// includes it in the format "package: operation not supported: reason".
// Otherwise formats as "operation not supported: reason" or just the reason.
//
// Returns:
//   - string: Formatted error message
func (e *UnsupportedError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s: %s not supported: %s", e.Package, e.Operation, e.Reason)
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s not supported: %s", e.Operation, e.Reason)
	}
	return e.Reason
}

// IsUnsupportedError checks if err is an UnsupportedError and returns it.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - *UnsupportedError: The UnsupportedError if err is one, nil otherwise
//   - bool: true if err is an UnsupportedError
func IsUnsupportedError(err error) (*UnsupportedError, bool) {
	var ue *UnsupportedError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// NewUnsupportedError creates an UnsupportedError with the given details.
//
// Parameters:
//   - operation: The operation that was attempted
//   - reason: Why the operation is not supported
//   - pkg: Name of the package (optional)
//
// Returns:
//   - *UnsupportedError: New unsupported error
func NewUnsupportedError(operation, reason, pkg string) *UnsupportedError {
	return &UnsupportedError{
		Operation: operation,
		Reason:    reason,
		Package:   pkg,
	}
}
