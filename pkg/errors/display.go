package errors

import (
	"fmt"
	"io"
)

// PrintErrorWithHints prints errors with actionable hints to the writer.
//
// This is the single implementation for error display across all commands.
// It formats errors consistently and looks up hints for each error.
//
// Parameters:
//   - w: Writer to output to (typically os.Stderr)
//   - errs: Slice of errors to display
//   - verbose: If true, includes the per-dependency failures of a partial success
//
// Output format:
//
//	Error: <error message>
//	  💡 <actionable hint if available>
func PrintErrorWithHints(w io.Writer, errs []error, verbose bool) {
	for _, err := range errs {
		printSingleError(w, err, verbose)
	}
}

// printSingleError prints a single error with appropriate formatting.
func printSingleError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}

	if ve, ok := IsValidationError(err); ok {
		_, _ = fmt.Fprintf(w, "Validation Error: %s\n", ve.Error())
		return
	}

	if ue, ok := IsUnsupportedError(err); ok {
		_, _ = fmt.Fprintf(w, "Unsupported: %s\n", ue.Error())
		return
	}

	if pse, ok := IsPartialSuccess(err); ok {
		printPartialSuccessError(w, pse, verbose)
		return
	}

	_, _ = fmt.Fprintf(w, "Error: %s\n", EnhanceErrorWithHint(err))
}

// printPartialSuccessError prints partial success details.
//
// Prints a summary of succeeded and failed dependencies. In verbose mode,
// also prints each failure with its hint.
func printPartialSuccessError(w io.Writer, err *PartialSuccessError, verbose bool) {
	_, _ = fmt.Fprintf(w, "Partial Success: %s\n", err.Error())
	if verbose && len(err.Errors) > 0 {
		_, _ = fmt.Fprintf(w, "  Failed dependencies:\n")
		for _, e := range err.Errors {
			_, _ = fmt.Fprintf(w, "    - %s\n", EnhanceErrorWithHint(e))
		}
	}
}
