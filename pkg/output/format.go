// Package output provides formatters for exporting command results.
// Tables are the default terminal display; JSON is the machine-readable form.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable is the default terminal table output.
	FormatTable Format = "table"
	// FormatJSON outputs data as JSON.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format type.
//
// The parsing is case-insensitive. An empty string selects FormatTable.
//
// Parameters:
//   - s: Format string to parse (e.g., "table", "JSON")
//
// Returns:
//   - Format: The parsed format
//   - error: When s names no known format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (valid: %s, %s)", s, FormatTable, FormatJSON)
	}
}

// IsStructuredFormat returns true if the format requires structured output (not table).
//
// Structured formats are for machine consumption: progress and colour are
// suppressed and nothing but the document is written to stdout.
func IsStructuredFormat(f Format) bool {
	return f == FormatJSON
}

// WriteJSON writes data as indented JSON followed by a newline.
//
// Parameters:
//   - w: Destination writer
//   - data: Data to encode, typically an *orderedmap.OrderedMap
//
// Returns:
//   - error: When encoding or writing fails
func WriteJSON(w io.Writer, data interface{}) error {
	out, err := marshalJSON(data)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// marshalJSON encodes data with 2-space indentation and without HTML escaping.
//
// It performs the following operations:
//   - Step 1: Disable HTML escaping for ordered maps if applicable
//   - Step 2: Create JSON encoder with HTML escaping disabled
//   - Step 3: Apply proper indentation (2 spaces)
//   - Step 4: Trim trailing newline from output
//
// Parameters:
//   - data: The data to marshal, typically an *orderedmap.OrderedMap or compatible type
//
// Returns:
//   - []byte: JSON bytes with proper formatting and no HTML escaping
//   - error: Returns error if encoding fails; returns nil on success
func marshalJSON(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if ordered, ok := data.(*orderedmap.OrderedMap); ok {
		disableOrderedMapEscape(ordered)
	}
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// disableOrderedMapEscape recursively disables HTML escaping for an ordered map and all nested maps.
//
// Requirement strings routinely contain "<" and ">", which must reach the
// output unescaped.
func disableOrderedMapEscape(m *orderedmap.OrderedMap) {
	m.SetEscapeHTML(false)
	for _, key := range m.Keys() {
		val, _ := m.Get(key)
		m.Set(key, normalizeOrderedMapEscaping(val))
	}
}

// normalizeOrderedMapEscaping recursively normalizes HTML escaping for a value of any type.
func normalizeOrderedMapEscaping(val interface{}) interface{} {
	switch v := val.(type) {
	case *orderedmap.OrderedMap:
		disableOrderedMapEscape(v)
		return v
	case []*orderedmap.OrderedMap:
		for _, item := range v {
			disableOrderedMapEscape(item)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeOrderedMapEscaping(item)
		}
		return v
	default:
		return val
	}
}
