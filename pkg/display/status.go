package display

import (
	"fmt"

	"github.com/ajxudir/depfloor/pkg/bump"
	"github.com/ajxudir/depfloor/pkg/constants"
)

// FormatStatus formats a status string with the appropriate icon.
//
// Parameters:
//   - status: The status string (e.g., "Updated", "Failed", "Planned")
//
// Returns:
//   - string: Formatted status with icon prefix (e.g., "🟢 Updated"), or status unchanged if unknown
//
// Example:
//
//	display.FormatStatus("Updated")   // Returns "🟢 Updated"
//	display.FormatStatus("Failed")    // Returns "❌ Failed"
//	display.FormatStatus("Planned")   // Returns "🟡 Planned"
func FormatStatus(status string) string {
	icon := StatusIcon(status)
	if icon == "" {
		return status
	}
	return fmt.Sprintf("%s %s", icon, status)
}

// StatusIcon returns the icon for a given status.
//
// Parameters:
//   - status: The status string
//
// Returns:
//   - string: The icon for this status, or empty string if unknown
func StatusIcon(status string) string {
	switch status {
	case constants.StatusUpdated, constants.StatusUnchanged:
		return constants.IconSuccess
	case constants.StatusPlanned:
		return constants.IconPending
	case constants.StatusFallback:
		return constants.IconWarning
	case constants.StatusSkipped:
		return constants.IconIgnored
	case constants.StatusFailed:
		return constants.IconError
	default:
		return ""
	}
}

// BumpStatus maps a bump outcome to its display status.
//
// An updated requirement that was not written (dry-run, or nothing persisted)
// is reported as planned.
//
// Parameters:
//   - outcome: Outcome of the requirement
//   - persisted: Whether the new requirements were written
//
// Returns:
//   - string: One of the status constants in pkg/constants
func BumpStatus(outcome bump.Outcome, persisted bool) string {
	switch outcome {
	case bump.OutcomeUpdated:
		if persisted {
			return constants.StatusUpdated
		}
		return constants.StatusPlanned
	case bump.OutcomeUnchanged:
		return constants.StatusUnchanged
	case bump.OutcomeFallback:
		return constants.StatusFallback
	case bump.OutcomeSkipped:
		return constants.StatusSkipped
	default:
		return constants.StatusFailed
	}
}

// IsFailureStatus returns true if the status indicates failure.
func IsFailureStatus(status string) bool {
	return status == constants.StatusFailed
}
