package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityxtract/entityxtract/internal/common"
)

const sampleYAML = `
entities:
  - name: total
    type: scalar
    instructions: The grand total including tax.
    required: true
    example: "42.00"
  - name: line_items
    type: table
    columns: [name, qty, price]
    example_rows:
      - name: apple
        qty: 2
        price: "1.20"
  - name: vendor
    type: object
    example_object:
      name: ACME GmbH
      vat_id: DE123456789
`

func TestParse(t *testing.T) {
	entities, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, entities, 3)

	// Declaration order is preserved.
	assert.Equal(t, "total", entities[0].Base().Name)
	assert.Equal(t, "line_items", entities[1].Base().Name)
	assert.Equal(t, "vendor", entities[2].Base().Name)

	assert.Equal(t, ShapeScalar, entities[0].Shape())
	assert.True(t, entities[0].Base().Required)
	assert.False(t, entities[1].Base().Required)

	tbl, ok := entities[1].(TableEntity)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "qty", "price"}, tbl.Columns)
}

func TestParseInfersColumnsFromExampleRows(t *testing.T) {
	entities, err := Parse([]byte(`
entities:
  - name: items
    type: table
    example_rows:
      - qty: 1
        name: apple
`))
	require.NoError(t, err)
	tbl, ok := entities[0].(TableEntity)
	require.True(t, ok)
	// Inferred columns are sorted for determinism.
	assert.Equal(t, []string{"name", "qty"}, tbl.Columns)
}

func TestParseRejectsBadDeclarations(t *testing.T) {
	_, err := Parse([]byte(`entities: []`))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = Parse([]byte("entities:\n  - name: x\n    type: blob\n"))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = Parse([]byte("entities:\n  - name: a\n    type: scalar\n  - name: a\n    type: scalar\n"))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = Parse([]byte(`not yaml: [`))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
