package inspect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaErrors lists every violation found in a document
type SchemaErrors []error

func (se SchemaErrors) Error() string {
	parts := make([]string, 0, len(se))
	for _, err := range se {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a schema document
func CompileSchema(schema []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.schema.json", bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("response.schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// Validate checks body against the schema. A nil result means the body
// conforms; otherwise the error is a SchemaErrors or a parse failure.
func (s *Schema) Validate(body []byte) error {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return flatten(verr)
	}
	return SchemaErrors{err}
}

// ValidateSchema compiles schema and validates body against it
func ValidateSchema(body, schema []byte) error {
	s, err := CompileSchema(schema)
	if err != nil {
		return err
	}
	return s.Validate(body)
}

// flatten collects the leaf causes, which carry the useful messages
func flatten(err *jsonschema.ValidationError) SchemaErrors {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return SchemaErrors{fmt.Errorf("%s: %s", loc, err.Message)}
	}
	var out SchemaErrors
	for _, cause := range err.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
