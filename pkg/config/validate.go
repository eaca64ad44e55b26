package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	depferrors "github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field      string
	Message    string
	Expected   string // Expected type or schema hint
	ValidKeys  string // Valid keys for this context
	DocSection string // Documentation section reference
}

// Error returns the error message string.
//
// Returns:
//   - string: formatted error message with field name if available
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// VerboseError returns a detailed error message with schema hints.
//
// Returns:
//   - string: detailed error message with schema information and documentation links
func (e ValidationError) VerboseError() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.Expected != "" {
		sb.WriteString(fmt.Sprintf("\n    Expected: %s", e.Expected))
	}
	if e.ValidKeys != "" {
		sb.WriteString(fmt.Sprintf("\n    Valid keys: %s", e.ValidKeys))
	}
	if e.DocSection != "" {
		sb.WriteString(fmt.Sprintf("\n    📖 See: docs/configuration.md#%s", e.DocSection))
	}
	return sb.String()
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessages returns all error messages as a formatted string.
//
// Returns:
//   - string: formatted error messages, or empty string if no errors
func (r *ValidationResult) ErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, "  - "+e.Error())
	}
	return "Configuration validation failed:\n" + strings.Join(msgs, "\n")
}

// VerboseErrorMessages returns detailed error messages with schema hints.
//
// Returns:
//   - string: detailed formatted error messages, or empty string if no errors
func (r *ValidationResult) VerboseErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, "  - "+e.VerboseError())
	}
	return "Configuration validation failed:\n" + strings.Join(msgs, "\n")
}

// Err converts the result into an error carrying the configuration exit code.
//
// Parameters:
//   - source: config file path, empty for built-in defaults
//
// Returns:
//   - error: *errors.ValidationError, or nil when there are no errors
func (r *ValidationResult) Err(source string) error {
	if !r.HasErrors() {
		return nil
	}
	if source == "" {
		source = "configuration"
	}
	if len(r.Errors) == 1 {
		e := r.Errors[0]
		msg := e.Message
		if e.Field != "" {
			msg = e.Field + ": " + msg
		}
		return depferrors.NewConfigValidationError(source, msg)
	}
	return depferrors.NewConfigValidationError(source, r.ErrorMessages())
}

// Schema information for validation errors
var configSchema = map[string]schemaInfo{
	"Config": {
		fields: "extends, manifest, continue_on_fail, window, registry, persist, security",
		doc:    "configuration",
	},
	"WindowCfg": {
		fields: "drop_months, cooldown_months",
		doc:    "window",
	},
	"RegistryCfg": {
		fields: "base_url, api, timeout_seconds, retries, user_agent, skip_yanked",
		doc:    "registry",
	},
	"PersistCfg": {
		fields: "mode, command, env, timeout_seconds",
		doc:    "persist",
	},
	"SecurityCfg": {
		fields: "allow_path_traversal, allow_absolute_paths, max_config_file_size",
		doc:    "security",
	},
}

type schemaInfo struct {
	fields string
	doc    string
}

// ValidateConfigFile validates a YAML configuration file for syntax errors and unknown fields.
//
// The file is layered over the built-in defaults before the values are
// checked, so a file that sets only some keys is valid. Extends are not
// followed.
//
// Parameters:
//   - data: YAML configuration data as bytes
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func ValidateConfigFile(data []byte) *ValidationResult {
	result := &ValidationResult{}

	verbose.Printf("Config validation: starting YAML parsing with strict field checking")

	cfg, err := loadDefaultConfig()
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{Message: err.Error()})
		return result
	}
	if err := decodeOnto(cfg, data); err != nil {
		verbose.Printf("Config validation FAILED: YAML decode error: %v", err)
		result.addDecodeError(err)
		return result
	}

	validateConfigStruct(cfg, result)

	if len(result.Errors) == 0 {
		verbose.Printf("Config validation PASSED: no errors found")
	} else {
		verbose.Printf("Config validation FAILED: %d errors found", len(result.Errors))
	}
	return result
}

// addDecodeError turns a YAML decode error into a validation error with hints.
func (r *ValidationResult) addDecodeError(err error) {
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "field") && strings.Contains(errMsg, "not found"):
		fieldName, typeName := extractFieldAndType(errMsg)
		verr := ValidationError{Message: fmt.Sprintf("unknown field '%s'", fieldName)}
		if lineNum := extractLineNumber(errMsg); lineNum > 0 {
			verr.Message = fmt.Sprintf("unknown field '%s' (line %d)", fieldName, lineNum)
		}
		if schema, ok := configSchema[typeName]; ok {
			verr.ValidKeys = schema.fields
			verr.DocSection = schema.doc
		} else if typeName != "" {
			verr.Expected = fmt.Sprintf("valid field for %s", typeName)
		}
		if suggestion := suggestSimilarField(fieldName, typeName); suggestion != "" {
			verr.Message += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
		}
		r.Errors = append(r.Errors, verr)
	case strings.Contains(errMsg, "cannot unmarshal"):
		// type mismatches also contain "yaml:", so check them first
		r.Errors = append(r.Errors, ValidationError{
			Message:  errMsg,
			Expected: extractExpectedType(errMsg),
		})
	case strings.Contains(errMsg, "yaml:"):
		r.Errors = append(r.Errors, ValidationError{
			Message:    fmt.Sprintf("YAML syntax error: %s", errMsg),
			DocSection: "configuration",
		})
	default:
		r.Errors = append(r.Errors, ValidationError{Message: errMsg})
	}
}

// Validate validates a loaded Config struct.
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	validateConfigStruct(c, result)
	return result
}

// validateConfigStruct checks value ranges and enumerations.
func validateConfigStruct(cfg *Config, result *ValidationResult) {
	if strings.TrimSpace(cfg.Manifest) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "manifest",
			Message: "manifest path cannot be empty",
		})
	}

	verbose.Printf("Config validation: window drop=%g cooldown=%g", cfg.Window.DropMonths, cfg.Window.CooldownMonths)
	if err := cfg.FloorWindow().Validate(); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:      "window",
			Message:    err.Error(),
			Expected:   "0 <= cooldown_months <= drop_months",
			DocSection: "window",
		})
	}

	validateRegistry(&cfg.Registry, result)
	validatePersist(&cfg.Persist, result)
}

// validateRegistry checks the registry section.
func validateRegistry(r *RegistryCfg, result *ValidationResult) {
	if !slices.Contains(RegistryAPIs, r.API) {
		result.Errors = append(result.Errors, ValidationError{
			Field:     "registry.api",
			Message:   fmt.Sprintf("unknown api %q", r.API),
			ValidKeys: strings.Join(RegistryAPIs, ", "),
		})
	}

	u, err := url.Parse(r.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "registry.base_url",
			Message:  fmt.Sprintf("invalid URL %q", r.BaseURL),
			Expected: "absolute http or https URL",
		})
	}

	if r.TimeoutSeconds <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "registry.timeout_seconds",
			Message: "must be positive",
		})
	}
	if r.Retries < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "registry.retries",
			Message: "cannot be negative",
		})
	} else if r.Retries > 10 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("registry.retries is %d; a run may take a long time against a failing index", r.Retries))
	}
}

// validatePersist checks the persist section.
func validatePersist(p *PersistCfg, result *ValidationResult) {
	if !slices.Contains(PersistModes, p.Mode) {
		result.Errors = append(result.Errors, ValidationError{
			Field:     "persist.mode",
			Message:   fmt.Sprintf("unknown mode %q", p.Mode),
			ValidKeys: strings.Join(PersistModes, ", "),
		})
	}
	if p.Mode == PersistModeCommand {
		if strings.TrimSpace(p.Command) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "persist.command",
				Message: "command cannot be empty when mode is command",
			})
		} else if !strings.Contains(p.Command, "{{requirements}}") {
			result.Warnings = append(result.Warnings, "persist.command does not use {{requirements}}; updated requirements will not be passed to it")
		}
	}
	if p.TimeoutSeconds < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "persist.timeout_seconds",
			Message: "cannot be negative",
		})
	}
}

// extractFieldAndType extracts the unknown field and its type from a YAML error.
//
// Parameters:
//   - errMsg: YAML error message
//
// Returns:
//   - field: the unknown field name
//   - typeName: the type name where the field was found
func extractFieldAndType(errMsg string) (field, typeName string) {
	// Error format: "yaml: unmarshal errors:\n  line X: field foo not found in type config.Type"
	parts := strings.Split(errMsg, "field ")
	if len(parts) >= 2 {
		fieldPart := parts[1]
		if spaceIdx := strings.Index(fieldPart, " "); spaceIdx > 0 {
			field = fieldPart[:spaceIdx]
		} else {
			field = fieldPart
		}
	}

	if idx := strings.Index(errMsg, "in type config."); idx >= 0 {
		typePart := errMsg[idx+len("in type config."):]
		if endIdx := strings.IndexAny(typePart, " \n"); endIdx > 0 {
			typeName = typePart[:endIdx]
		} else {
			typeName = typePart
		}
	}

	return field, typeName
}

var lineNumberPattern = regexp.MustCompile(`line (\d+):`)

// extractLineNumber extracts the line number from a YAML error message.
//
// Returns:
//   - int: the line number, or 0 if not found
func extractLineNumber(errMsg string) int {
	matches := lineNumberPattern.FindStringSubmatch(errMsg)
	if len(matches) >= 2 {
		var lineNum int
		_, _ = fmt.Sscanf(matches[1], "%d", &lineNum)
		return lineNum
	}
	return 0
}

// extractExpectedType extracts Y from "cannot unmarshal X into Y".
func extractExpectedType(errMsg string) string {
	if idx := strings.Index(errMsg, "into "); idx >= 0 {
		typePart := errMsg[idx+5:]
		if endIdx := strings.IndexAny(typePart, " \n"); endIdx > 0 {
			return typePart[:endIdx]
		}
		return typePart
	}
	return ""
}

// commonTypos maps common typos to correct field names
var commonTypos = map[string]map[string]string{
	"Config": {
		"extend":         "extends",
		"continueOnFail": "continue_on_fail",
		"file":           "manifest",
		"windows":        "window",
	},
	"WindowCfg": {
		"drop":            "drop_months",
		"cooldown":        "cooldown_months",
		"dropMonths":      "drop_months",
		"cooldownMonths":  "cooldown_months",
		"cool_down_month": "cooldown_months",
	},
	"RegistryCfg": {
		"url":            "base_url",
		"baseUrl":        "base_url",
		"index_url":      "base_url",
		"timeout":        "timeout_seconds",
		"timeoutSeconds": "timeout_seconds",
		"retry":          "retries",
		"userAgent":      "user_agent",
		"skipYanked":     "skip_yanked",
	},
	"PersistCfg": {
		"commands":       "command",
		"timeout":        "timeout_seconds",
		"timeoutSeconds": "timeout_seconds",
	},
}

// suggestSimilarField returns a suggested field name if the input looks like a typo.
//
// Parameters:
//   - field: the unknown field name
//   - typeName: the type name where the field was found
//
// Returns:
//   - string: suggested correct field name, or empty string if no suggestion
func suggestSimilarField(field, typeName string) string {
	if typos, ok := commonTypos[typeName]; ok {
		if suggestion, found := typos[field]; found {
			return suggestion
		}
	}

	if strings.Contains(field, "-") {
		snakeCase := strings.ReplaceAll(field, "-", "_")
		if schema, ok := configSchema[typeName]; ok {
			for _, known := range strings.Split(schema.fields, ", ") {
				if known == snakeCase {
					return snakeCase
				}
			}
		}
	}

	return ""
}
