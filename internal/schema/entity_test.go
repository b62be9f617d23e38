package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityxtract/entityxtract/internal/common"
)

func TestValidateEntities(t *testing.T) {
	ok := []Entity{
		ScalarEntity{EntityBase: EntityBase{Name: "total"}},
		TableEntity{EntityBase: EntityBase{Name: "line_items"}, Columns: []string{"name", "price"}},
	}
	require.NoError(t, ValidateEntities(ok))

	dup := []Entity{
		ScalarEntity{EntityBase: EntityBase{Name: "total"}},
		ObjectEntity{EntityBase: EntityBase{Name: "total"}},
	}
	err := ValidateEntities(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	empty := []Entity{ScalarEntity{EntityBase: EntityBase{Name: "  "}}}
	assert.ErrorIs(t, ValidateEntities(empty), common.ErrInvalidConfig)

	// No entities is a valid (if pointless) job.
	require.NoError(t, ValidateEntities(nil))
}

func TestExampleJSON(t *testing.T) {
	s := ScalarEntity{EntityBase: EntityBase{Name: "total"}, Example: 12.5}
	got, err := ExampleJSON(s)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got)

	tbl := TableEntity{
		EntityBase:  EntityBase{Name: "items"},
		Columns:     []string{"name", "qty"},
		ExampleRows: []map[string]any{{"name": "apple", "qty": 2}},
	}
	got, err = ExampleJSON(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"apple","qty":2}]`, got)
}

func TestScalarPayloadSchema(t *testing.T) {
	s := ScalarEntity{EntityBase: EntityBase{Name: "total"}}

	require.NoError(t, ValidateJSON(s.PayloadSchema(), []byte(`"42.00"`)))
	require.NoError(t, ValidateJSON(s.PayloadSchema(), []byte(`42`)))
	require.NoError(t, ValidateJSON(s.PayloadSchema(), []byte(`true`)))

	assert.Error(t, ValidateJSON(s.PayloadSchema(), []byte(`{"a":1}`)))
	assert.Error(t, ValidateJSON(s.PayloadSchema(), []byte(`[1,2]`)))
	assert.Error(t, ValidateJSON(s.PayloadSchema(), []byte(`null`)))
}

func TestTablePayloadSchema(t *testing.T) {
	tbl := TableEntity{EntityBase: EntityBase{Name: "items"}, Columns: []string{"name", "price"}}

	require.NoError(t, ValidateJSON(tbl.PayloadSchema(), []byte(`[{"name":"a","price":1}]`)))
	require.NoError(t, ValidateJSON(tbl.PayloadSchema(), []byte(`[]`)))

	assert.Error(t, ValidateJSON(tbl.PayloadSchema(), []byte(`{"name":"a"}`)))
	assert.Error(t, ValidateJSON(tbl.PayloadSchema(), []byte(`["a","b"]`)))
}

func TestObjectPayloadSchema(t *testing.T) {
	obj := ObjectEntity{EntityBase: EntityBase{Name: "vendor"}}

	require.NoError(t, ValidateJSON(obj.PayloadSchema(), []byte(`{"name":"ACME","vat":"DE1"}`)))
	assert.Error(t, ValidateJSON(obj.PayloadSchema(), []byte(`"ACME"`)))
	assert.Error(t, ValidateJSON(obj.PayloadSchema(), []byte(`[{"name":"ACME"}]`)))
}
