// Package constants provides centralized string constants used throughout the application.
// This eliminates magic strings and provides a single source of truth for status values.
package constants

// Dependency status constants as shown in table and JSON output.
const (
	// StatusUpdated indicates the requirement was rewritten and persisted.
	StatusUpdated = "Updated"

	// StatusPlanned indicates the requirement would be rewritten (dry-run).
	StatusPlanned = "Planned"

	// StatusUnchanged indicates the existing specifier already implies the floor.
	StatusUnchanged = "Unchanged"

	// StatusFallback indicates the floor could not be merged and the original was kept.
	StatusFallback = "Fallback"

	// StatusSkipped indicates the requirement has no version to bump.
	StatusSkipped = "Skipped"

	// StatusFailed indicates the release history could not be resolved.
	StatusFailed = "Failed"
)

// Placeholder values for display when data is not available.
const (
	// PlaceholderNA is used when a value is not available.
	PlaceholderNA = "#N/A"

	// PlaceholderWildcard is used when a requirement is unconstrained.
	PlaceholderWildcard = "*"
)

// Icon constants for status display.
const (
	// IconSuccess indicates a successful or positive state (green circle).
	IconSuccess = "🟢"

	// IconWarning indicates a warning or caution state (orange circle).
	IconWarning = "🟠"

	// IconError indicates an error or failed state (red X).
	IconError = "❌"

	// IconInfo indicates informational or neutral state (blue circle).
	IconInfo = "🔵"

	// IconPending indicates a pending or planned state (yellow circle).
	IconPending = "🟡"

	// IconIgnored indicates a requirement that is not processed.
	IconIgnored = "🚫"

	// IconWarn is the warning prefix for messages.
	IconWarn = "⚠️"

	// IconCheckmarkBox indicates successful validation (checkmark in box).
	IconCheckmarkBox = "✅"

	// IconLightbulb indicates a hint or suggestion.
	IconLightbulb = "💡"
)
