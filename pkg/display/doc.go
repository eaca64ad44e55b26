// Package display provides unified display and formatting for depfloor output.
//
// Value Formatting:
//
// Use formatting functions for consistent value display:
//
//	floor := display.SafeFloorValue(entry.Floor)          // Returns "#N/A" if empty
//	spec := display.SafeSpecifierValue(req.Specifier)     // Returns "*" if empty
//
// Status Formatting:
//
// Use status functions for consistent status display with icons:
//
//	status := display.FormatStatus("Updated")  // Returns "🟢 Updated"
//
// Messages:
//
// Use message functions for consistent user feedback:
//
//	display.PrintWarnings(os.Stderr, warnings)
//	display.PrintSummary(os.Stdout, summary)
//
// Tables are built on output.Table; JSON documents are written by pkg/output.
package display
