// Package contract holds the request shapes shared by the HTTP and gRPC
// surfaces and validates bodies against them.
package contract

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Monitor validates processor request bodies against compiled JSON schemas
type Monitor struct {
	schemas map[string]*gojsonschema.Schema
}

// NewMonitor compiles the schema of every processor operation
func NewMonitor() (*Monitor, error) {
	schemas := make(map[string]*gojsonschema.Schema, len(requestSchemas))
	for name, raw := range requestSchemas {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("error compiling %s schema: %w", name, err)
		}
		schemas[name] = compiled
	}
	return &Monitor{schemas: schemas}, nil
}

// Operations lists the operation names in sorted order
func (m *Monitor) Operations() []string {
	names := make([]string, 0, len(m.schemas))
	for name := range m.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate returns the schema violations of body for operation, empty when
// the body is valid. Malformed JSON and unknown operations are errors.
func (m *Monitor) Validate(operation string, body []byte) ([]string, error) {
	schema, ok := m.schemas[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("error during validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}
