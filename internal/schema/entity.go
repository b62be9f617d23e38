// Package schema declares the entities a job extracts: their names, shapes,
// few-shot examples and free-text instructions, plus the JSON-Schema each
// shape's payload must satisfy.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entityxtract/entityxtract/internal/common"
)

// Shape is the closed set of extractable value shapes.
type Shape string

const (
	ShapeScalar Shape = "scalar"
	ShapeTable  Shape = "table"
	ShapeObject Shape = "object"
)

// EntityBase carries the fields every entity variant shares. Name must be
// unique within a job; it keys the result mapping.
type EntityBase struct {
	Name         string
	Instructions string
	Required     bool
}

// Entity is one named thing to extract from a document.
type Entity interface {
	Base() EntityBase
	Shape() Shape
	// ShapeDescriptor is the human-readable shape description embedded in
	// the entity prompt.
	ShapeDescriptor() string
	// ExamplePayload is the few-shot example anchoring the expected output.
	ExamplePayload() any
	// PayloadSchema is the JSON-Schema (draft 2020-12 subset, as a generic
	// map) the extracted payload must validate against.
	PayloadSchema() map[string]any
}

// ScalarEntity extracts a single value (string, number or boolean).
type ScalarEntity struct {
	EntityBase
	Example any
}

func (e ScalarEntity) Base() EntityBase { return e.EntityBase }
func (e ScalarEntity) Shape() Shape     { return ShapeScalar }
func (e ScalarEntity) ShapeDescriptor() string {
	return "a single scalar value (string, number or boolean)"
}
func (e ScalarEntity) ExamplePayload() any { return e.Example }
func (e ScalarEntity) PayloadSchema() map[string]any {
	return map[string]any{"type": []any{"string", "number", "boolean"}}
}

// TableEntity extracts an ordered list of rows with a known column set.
type TableEntity struct {
	EntityBase
	Columns     []string
	ExampleRows []map[string]any
}

func (e TableEntity) Base() EntityBase { return e.EntityBase }
func (e TableEntity) Shape() Shape     { return ShapeTable }
func (e TableEntity) ShapeDescriptor() string {
	return fmt.Sprintf("a table: a JSON array of row objects with the columns [%s]",
		strings.Join(e.Columns, ", "))
}
func (e TableEntity) ExamplePayload() any { return e.ExampleRows }
func (e TableEntity) PayloadSchema() map[string]any {
	props := map[string]any{}
	for _, col := range e.Columns {
		props[col] = map[string]any{}
	}
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": props,
		},
	}
}

// ObjectEntity extracts one nested key/value record.
type ObjectEntity struct {
	EntityBase
	Example map[string]any
}

func (e ObjectEntity) Base() EntityBase { return e.EntityBase }
func (e ObjectEntity) Shape() Shape     { return ShapeObject }
func (e ObjectEntity) ShapeDescriptor() string {
	return "a single JSON object of named fields"
}
func (e ObjectEntity) ExamplePayload() any { return e.Example }
func (e ObjectEntity) PayloadSchema() map[string]any {
	return map[string]any{"type": "object"}
}

// ExampleJSON serializes an entity's example payload as canonical JSON for
// prompt embedding.
func ExampleJSON(e Entity) (string, error) {
	b, err := json.Marshal(e.ExamplePayload())
	if err != nil {
		return "", fmt.Errorf("marshal example for %q: %w", e.Base().Name, err)
	}
	return string(b), nil
}

// ValidateEntities enforces the job-setup invariants: every entity has a
// non-empty name and names are unique across the job.
func ValidateEntities(entities []Entity) error {
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		name := e.Base().Name
		if strings.TrimSpace(name) == "" {
			return common.WrapError(common.ErrInvalidConfig, "entity with empty name")
		}
		if _, dup := seen[name]; dup {
			return common.WrapError(common.ErrInvalidConfig, fmt.Sprintf("duplicate entity name %q", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}
