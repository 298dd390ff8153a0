// Package llmjson validates and cleans JSON produced by language models.
package llmjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "schema.json"

// Schema is a compiled JSON Schema.
type Schema struct {
	doc      map[string]any
	compiled *jsonschema.Schema
}

// Compile compiles a JSON Schema document.
func Compile(doc map[string]any) (*Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{doc: doc, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
// It is meant for package-level schemas.
func MustCompile(doc map[string]any) *Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Document returns the schema source.
func (s *Schema) Document() map[string]any {
	return s.doc
}

// Validate checks that data is JSON conforming to the schema.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// StripFences removes a Markdown code fence and any prose around the
// outermost JSON object. Models asked for JSON by instruction alone
// often wrap it in ```json ... ```.
func StripFences(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("```")) {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		}
		data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
		data = bytes.TrimSpace(data)
	}
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start > 0 && end > start {
		return data[start : end+1]
	}
	if start == 0 && end > 0 {
		return data[:end+1]
	}
	return data
}
