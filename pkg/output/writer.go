package output

import (
	"fmt"
	"io"
)

// WriteBumpResult writes bump results in a structured format.
//
// Tables are rendered by pkg/display; only structured formats are handled here.
//
// Parameters:
//   - w: Destination writer for the output
//   - format: Output format (FormatJSON)
//   - result: Bump result data to write
//
// Returns:
//   - error: When format is unsupported, returns an error; when write fails, returns the underlying error; otherwise returns nil
func WriteBumpResult(w io.Writer, format Format, result *BumpResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, result.Ordered())
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFloorResult writes floor query results in a structured format.
//
// Parameters:
//   - w: Destination writer for the output
//   - format: Output format (FormatJSON)
//   - result: Floor result data to write
//
// Returns:
//   - error: When format is unsupported, returns an error; when write fails, returns the underlying error; otherwise returns nil
func WriteFloorResult(w io.Writer, format Format, result *FloorResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, result.Ordered())
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
