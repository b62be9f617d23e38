package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/entityxtract/entityxtract/internal/common"
)

// entitySpec is the YAML declaration of one entity.
type entitySpec struct {
	Name          string           `yaml:"name"`
	Type          string           `yaml:"type"` // scalar | table | object
	Instructions  string           `yaml:"instructions"`
	Required      bool             `yaml:"required"`
	Example       any              `yaml:"example"`
	Columns       []string         `yaml:"columns"`
	ExampleRows   []map[string]any `yaml:"example_rows"`
	ExampleObject map[string]any   `yaml:"example_object"`
}

type entityFile struct {
	Entities []entitySpec `yaml:"entities"`
}

// LoadFile reads an ordered entity declaration from a YAML file.
func LoadFile(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an ordered entity declaration from YAML bytes.
func Parse(data []byte) ([]Entity, error) {
	var file entityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, common.WrapError(common.ErrInvalidConfig, fmt.Sprintf("parse entity yaml: %v", err))
	}
	if len(file.Entities) == 0 {
		return nil, common.WrapError(common.ErrInvalidConfig, "entity file declares no entities")
	}

	entities := make([]Entity, 0, len(file.Entities))
	for _, spec := range file.Entities {
		base := EntityBase{Name: spec.Name, Instructions: spec.Instructions, Required: spec.Required}
		switch spec.Type {
		case "scalar":
			entities = append(entities, ScalarEntity{EntityBase: base, Example: spec.Example})
		case "table":
			if len(spec.Columns) == 0 && len(spec.ExampleRows) > 0 {
				for col := range spec.ExampleRows[0] {
					spec.Columns = append(spec.Columns, col)
				}
				sort.Strings(spec.Columns)
			}
			entities = append(entities, TableEntity{EntityBase: base, Columns: spec.Columns, ExampleRows: spec.ExampleRows})
		case "object":
			entities = append(entities, ObjectEntity{EntityBase: base, Example: spec.ExampleObject})
		default:
			return nil, common.WrapError(common.ErrInvalidConfig,
				fmt.Sprintf("entity %q has unknown type %q", spec.Name, spec.Type))
		}
	}

	if err := ValidateEntities(entities); err != nil {
		return nil, err
	}
	return entities, nil
}
