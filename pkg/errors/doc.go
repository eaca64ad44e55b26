// Package errors provides unified error types and display for depfloor.
//
// This package consolidates all error handling into a single location:
//   - ExitError: Command exit with specific exit code
//   - PartialSuccessError: Some dependencies resolved, some failed
//   - DependencyError: A single dependency failed, carrying its name
//   - InvalidParameterError: Window parameters outside 0 <= cooldown <= drop
//   - ValidationError: Configuration validation failures
//   - UnsupportedError: Requirements that cannot be bumped (URL requirements)
//
// Error Display:
//
// The package provides consistent error formatting with actionable hints:
//
//	errors.PrintErrorWithHints(os.Stderr, errs, verbose)
//
// Error Checking:
//
// Use the Is* functions to check error types:
//
//	if depErr, ok := errors.IsDependencyError(err); ok {
//	    fmt.Fprintf(os.Stderr, "failed on %s\n", depErr.Name)
//	}
//
// Exit Codes:
//
// Standard exit codes are defined for scripting integration:
//   - ExitSuccess (0): All dependencies resolved and the manifest was written
//   - ExitPartialFailure (1): Some dependencies failed under --continue-on-fail
//   - ExitFailure (2): A dependency failed or a critical error occurred
//   - ExitConfigError (3): Configuration or parameter error
package errors
