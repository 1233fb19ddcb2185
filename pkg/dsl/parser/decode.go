package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a rule document.
type Format string

const (
	FormatAuto Format = ""     // Detect from the file extension or content
	FormatJSON Format = "json" // JSON document
	FormatYAML Format = "yaml" // YAML document
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Decode decodes a rule document into JSON value types: map[string]any,
// []any, string, bool, nil and json.Number for numbers. YAML input is
// normalized to the same types so the schema check and the mapper see one
// representation.
func Decode(data []byte, format Format) (any, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return Normalize(v)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Normalize converts a value decoded by another decoder (YAML, a database
// driver) into JSON value types.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-compatible: %w", err)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the rule document")
	}
	return v, nil
}

// sniff treats a document that starts with a JSON delimiter as JSON and
// everything else as YAML.
func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
