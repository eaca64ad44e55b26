package display

import (
	"strconv"
	"strings"
	"time"

	"github.com/ajxudir/depfloor/pkg/constants"
)

// SafeFloorValue returns the floor version or a placeholder if empty.
//
// Parameters:
//   - val: Floor version string
//
// Returns:
//   - string: val, or "#N/A" if val is empty
func SafeFloorValue(val string) string {
	if strings.TrimSpace(val) == "" {
		return constants.PlaceholderNA
	}
	return val
}

// SafeSpecifierValue returns the specifier or a wildcard if unconstrained.
//
// Parameters:
//   - val: Version specifier, e.g. ">=1.2,<2"
//
// Returns:
//   - string: val, or "*" if val is empty
func SafeSpecifierValue(val string) string {
	if strings.TrimSpace(val) == "" {
		return constants.PlaceholderWildcard
	}
	return val
}

// FormatDate renders a calendar date, or "#N/A" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return constants.PlaceholderNA
	}
	return t.Format("2006-01-02")
}

// FormatMonths renders a month count without a trailing ".0".
//
// Example:
//
//	display.FormatMonths(24)   // Returns "24"
//	display.FormatMonths(1.5)  // Returns "1.5"
func FormatMonths(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// TruncateWithEllipsis shortens s to maxLen runes, ending in "...".
//
// Parameters:
//   - s: String to truncate
//   - maxLen: Maximum length including the ellipsis
//
// Returns:
//   - string: s unchanged if it fits or maxLen <= 3, otherwise the truncated string
func TruncateWithEllipsis(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen || maxLen <= 3 {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
