// Package schema generates the JSON schemas of the documents monorel emits and validates documents
// against them.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/monorel/monorel/internal/errors"
)

// BaseID prefixes the `$id` of every schema.
const BaseID = "https://monorel.dev/schemas/"

// ValidationError lists the violations found in a document.
type ValidationError struct {
	Errors []string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed with %d error(s): %s", len(err.Errors), strings.Join(err.Errors, "; "))
}

// Array returns the schema of a JSON array whose items are reflected from item.
func Array(name, title, description string, item any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	itemSchema := reflector.Reflect(item)
	itemSchema.Version = ""

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID(BaseID + name + "/schema.json"),
		Type:        "array",
		Title:       title,
		Description: description,
		Items:       itemSchema,
	}
}

// Validate checks data against s.
func Validate(s *jsonschema.Schema, data []byte) error {
	schemaBytes, err := json.Marshal(s)
	if err != nil {
		return errors.Errorf("failed to generate schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Errorf("failed to validate document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, violation := range result.Errors() {
		violations[i] = violation.String()
	}

	return errors.New(&ValidationError{Errors: violations})
}

// Write writes s to w as indented JSON.
func Write(w io.Writer, s *jsonschema.Schema) error {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	jsonBytes = append(jsonBytes, '\n')

	_, err = w.Write(jsonBytes)

	return errors.New(err)
}
