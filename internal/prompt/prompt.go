// Package prompt renders the system and per-entity instruction blocks from
// embedded template files. Rendering is deterministic and never calls the
// model. Templates use literal {{placeholder}} substitution so user
// instructions pass through verbatim.
package prompt

import (
	"embed"
	"fmt"
	"strings"

	"github.com/entityxtract/entityxtract/internal/schema"
)

//go:embed templates/*.txt
var templates embed.FS

const (
	systemTemplate = "templates/system.txt"
	scalarTemplate = "templates/scalar.txt"
	tableTemplate  = "templates/table.txt"
	objectTemplate = "templates/object.txt"
)

// System returns the shape-agnostic system instruction block: output
// discipline, JSON strictness, the found/not-found envelope contract.
func System() string {
	return mustRead(systemTemplate)
}

// ForEntity renders the instruction block for one entity: name, shape
// descriptor, canonical-JSON example and the user's instructions verbatim.
func ForEntity(e schema.Entity) (string, error) {
	example, err := schema.ExampleJSON(e)
	if err != nil {
		return "", err
	}

	var tpl string
	switch e.Shape() {
	case schema.ShapeScalar:
		tpl = mustRead(scalarTemplate)
	case schema.ShapeTable:
		tpl = mustRead(tableTemplate)
	case schema.ShapeObject:
		tpl = mustRead(objectTemplate)
	default:
		return "", fmt.Errorf("unknown entity shape %q", e.Shape())
	}

	out := strings.ReplaceAll(tpl, "{{name}}", e.Base().Name)
	out = strings.ReplaceAll(out, "{{shape}}", e.ShapeDescriptor())
	out = strings.ReplaceAll(out, "{{example}}", example)
	out = strings.ReplaceAll(out, "{{instructions}}", strings.TrimSpace(e.Base().Instructions))

	if table, ok := e.(schema.TableEntity); ok {
		out = strings.ReplaceAll(out, "{{columns}}", strings.Join(table.Columns, ", "))
	}
	return out, nil
}

func mustRead(name string) string {
	b, err := templates.ReadFile(name)
	if err != nil {
		// Embedded files are part of the binary; missing means a build bug.
		panic(fmt.Sprintf("prompt template %s: %v", name, err))
	}
	return string(b)
}
