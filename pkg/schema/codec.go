package schema

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrEmptyDocument is returned when a payload carries no schema.
var ErrEmptyDocument = errors.New("schema: raw document is empty")

// DecodeError ties a decode failure to the document it came from.
type DecodeError struct {
	Location string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("schema: decode %s: %v", e.Location, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a JSON or YAML payload. Payloads starting with '{' are read as
// JSON first; YAML is tried when JSON fails so flow-style YAML still loads.
func Decode(raw []byte) (model.FormSchema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return model.FormSchema{}, ErrEmptyDocument
	}

	if trimmed[0] == '{' {
		schema, jsonErr := DecodeJSON(trimmed)
		if jsonErr == nil {
			return schema, nil
		}
		schema, yamlErr := DecodeYAML(trimmed)
		if yamlErr == nil {
			return schema, nil
		}
		return model.FormSchema{}, jsonErr
	}
	return DecodeYAML(trimmed)
}

// DecodeJSON parses a JSON schema document.
func DecodeJSON(raw []byte) (model.FormSchema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.FormSchema{}, ErrEmptyDocument
	}
	var schema model.FormSchema
	if err := gojson.Unmarshal(raw, &schema); err != nil {
		return model.FormSchema{}, fmt.Errorf("schema: json: %w", err)
	}
	return schema, nil
}

// DecodeYAML parses a YAML schema document.
func DecodeYAML(raw []byte) (model.FormSchema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.FormSchema{}, ErrEmptyDocument
	}
	var schema model.FormSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return model.FormSchema{}, fmt.Errorf("schema: yaml: %w", err)
	}
	return schema, nil
}

// EncodeJSON renders the schema as indented JSON.
func EncodeJSON(schema model.FormSchema) ([]byte, error) {
	data, err := gojson.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: json: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeYAML renders the schema as YAML.
func EncodeYAML(schema model.FormSchema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(schema); err != nil {
		return nil, fmt.Errorf("schema: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("schema: yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// IsSchemaFile reports whether the path carries a schema document extension.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// EncodeFor picks the encoder matching the path extension, defaulting to JSON.
func EncodeFor(path string, schema model.FormSchema) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodeYAML(schema)
	default:
		return EncodeJSON(schema)
	}
}
