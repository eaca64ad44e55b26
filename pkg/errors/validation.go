package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration value that failed validation.
//
// Fields:
//   - Field: Dotted path of the offending key (e.g., "registry.api")
//   - Message: What is wrong with the value
//   - ValidKeys: Allowed values for enum-like fields
//
// Example:
//
//	return &ValidationError{
//	    Field:     "persist.mode",
//	    Message:   "unknown persist mode \"git\"",
//	    ValidKeys: []string{"command", "inplace"},
//	}
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Message describes what is wrong with the field.
	Message string

	// ValidKeys lists valid options for enum-like fields.
	ValidKeys []string
}

// Error implements the error interface.
//
// Returns:
//   - string: "field: message", followed by the valid options when known
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	} else {
		sb.WriteString(e.Message)
	}
	if len(e.ValidKeys) > 0 {
		sb.WriteString(fmt.Sprintf(" (valid: %s)", strings.Join(e.ValidKeys, ", ")))
	}
	return sb.String()
}

// IsValidationError checks if err is a ValidationError and returns it.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - *ValidationError: The ValidationError if err is one, nil otherwise
//   - bool: true if err is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NewConfigValidationError creates a ValidationError for a configuration field.
//
// Parameters:
//   - field: Dotted path of the field
//   - message: What is wrong with it
//   - validKeys: Allowed values, if the field is an enumeration
//
// Returns:
//   - *ValidationError: New validation error
func NewConfigValidationError(field, message string, validKeys ...string) *ValidationError {
	return &ValidationError{
		Field:     field,
		Message:   message,
		ValidKeys: validKeys,
	}
}
