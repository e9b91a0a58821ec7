// Package schemas manages per-category specification schemas: flat
// key-template files generated by the LLM, and JSON Schema validation of
// extracted spec payloads against them.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Template is the flat key set for one category. Values are empty strings
// in the stored file; only the keys matter.
type Template map[string]string

// FileName returns the schema file name for a category label.
func FileName(category string) string {
	name := strings.ReplaceAll(category, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return fmt.Sprintf("schema_%s.json", name)
}

// categoryFromFileName inverts FileName, except for categories that
// contained "/" or "_" themselves; those collapse to "_", which is accepted
// because category labels are single words or space-separated.
func categoryFromFileName(file string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(file, "schema_"), ".json")
	return strings.ReplaceAll(name, "_", " ")
}

// Save writes a category template into dir.
func Save(dir, category string, tmpl Template) error {
	data, err := json.MarshalIndent(tmpl, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding schema for %q: %w", category, err)
	}
	path := filepath.Join(dir, FileName(category))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing schema file: %w", err)
	}
	return nil
}

// LoadDir reads every schema_*.json file in dir and returns templates keyed
// by category label.
func LoadDir(dir string) (map[string]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema directory: %w", err)
	}

	out := make(map[string]Template)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "schema_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading schema file %s: %w", name, err)
		}
		var tmpl Template
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("parsing schema file %s: %w", name, err)
		}
		out[categoryFromFileName(name)] = tmpl
	}
	return out, nil
}

// SchemaLoadError reports a schema that could not be built or loaded.
type SchemaLoadError struct {
	Category string
	Message  string
	Cause    error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema for %q: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema for %q: %s", e.Category, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidationError reports an extracted payload that does not conform to its
// category schema.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at one field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("payload validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// jsonSchema builds a JSON Schema document from a template: an object whose
// known properties are nullable strings. Unknown properties are allowed
// because the extractor appends bookkeeping fields.
func jsonSchema(tmpl Template) map[string]any {
	props := make(map[string]any, len(tmpl))
	for key := range tmpl {
		props[key] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

// ValidatePayload validates an extracted spec payload against a category
// template. Returns *ValidationError when the payload does not conform and
// *SchemaLoadError when the schema itself cannot be processed.
func ValidatePayload(category string, tmpl Template, payload string) error {
	schemaDoc, err := json.Marshal(jsonSchema(tmpl))
	if err != nil {
		return &SchemaLoadError{Category: category, Message: "building schema document", Cause: err}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaDoc)
	documentLoader := gojsonschema.NewStringLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Category: category, Message: "validation failed during load", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
