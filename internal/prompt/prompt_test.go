package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityxtract/entityxtract/internal/schema"
)

func TestSystem(t *testing.T) {
	sys := System()
	assert.Contains(t, sys, `"found": true`)
	assert.Contains(t, sys, `"found": false`)
	// Deterministic across calls.
	assert.Equal(t, sys, System())
}

func TestForEntityScalar(t *testing.T) {
	ent := schema.ScalarEntity{
		EntityBase: schema.EntityBase{
			Name:         "total",
			Instructions: "The grand total including tax.",
		},
		Example: "42.00",
	}

	out, err := ForEntity(ent)
	require.NoError(t, err)

	assert.Contains(t, out, `"total"`)
	assert.Contains(t, out, `"42.00"`)
	assert.Contains(t, out, "The grand total including tax.")
	assert.NotContains(t, out, "{{")
}

func TestForEntityTable(t *testing.T) {
	ent := schema.TableEntity{
		EntityBase:  schema.EntityBase{Name: "line_items", Instructions: "One row per purchased item."},
		Columns:     []string{"name", "qty", "price"},
		ExampleRows: []map[string]any{{"name": "apple", "qty": 2, "price": "1.20"}},
	}

	out, err := ForEntity(ent)
	require.NoError(t, err)

	assert.Contains(t, out, "name, qty, price")
	assert.Contains(t, out, `"rows"`)
	assert.Contains(t, out, `"apple"`)
	assert.NotContains(t, out, "{{")
}

func TestForEntityPassesInstructionsVerbatim(t *testing.T) {
	// User instructions with template-looking text must pass through
	// untouched rather than being expanded.
	ent := schema.ObjectEntity{
		EntityBase: schema.EntityBase{
			Name:         "vendor",
			Instructions: "Keep placeholders like {{this}} literal.",
		},
		Example: map[string]any{"name": "ACME"},
	}

	out, err := ForEntity(ent)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Keep placeholders like {{this}} literal."))
}
