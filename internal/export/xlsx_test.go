package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/entityxtract/entityxtract/internal/extractor"
	"github.com/entityxtract/entityxtract/internal/schema"
)

func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func sampleResults() extractor.Results {
	return extractor.Results{
		Order: []string{"total", "items", "discount"},
		Results: map[string]extractor.Result{
			"total": {
				Entity:       "total",
				Shape:        schema.ShapeScalar,
				Success:      true,
				Data:         "19.99",
				InputTokens:  intp(100),
				OutputTokens: intp(10),
				Cost:         floatp(0.001),
			},
			"items": {
				Entity:  "items",
				Shape:   schema.ShapeTable,
				Success: true,
				Data: []map[string]any{
					{"name": "apple", "qty": 2},
					{"name": "pear", "qty": 1},
				},
			},
			"discount": {
				Entity:  "discount",
				Shape:   schema.ShapeScalar,
				Success: false,
				Message: "exhausted 3 attempts",
			},
		},
		Success:           false,
		Message:           "1 of 3 entities failed",
		TotalInputTokens:  intp(100),
		TotalOutputTokens: intp(10),
		TotalCost:         floatp(0.001),
	}
}

func TestResultsXLSX(t *testing.T) {
	book, err := ResultsXLSX(sampleResults(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, book)

	f, err := excelize.OpenReader(bytes.NewReader(book))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "items")

	// Summary rows follow declaration order.
	cell, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "total", cell)

	cell, err = f.GetCellValue("Summary", "H2")
	require.NoError(t, err)
	assert.Equal(t, "19.99", cell)

	cell, err = f.GetCellValue("Summary", "A4")
	require.NoError(t, err)
	assert.Equal(t, "discount", cell)

	// Table entity gets its own sheet with a header row.
	rows, err := f.GetRows("items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "qty"}, rows[0])
	assert.Equal(t, "apple", rows[1][0])
}

func TestResultsXLSXSheetNameSanitized(t *testing.T) {
	res := extractor.Results{
		Order: []string{"a/very[long]name:with*bad?chars and far too many characters"},
		Results: map[string]extractor.Result{
			"a/very[long]name:with*bad?chars and far too many characters": {
				Entity:  "a/very[long]name:with*bad?chars and far too many characters",
				Shape:   schema.ShapeTable,
				Success: true,
				Data:    []map[string]any{{"k": "v"}},
			},
		},
		Success: true,
	}

	book, err := ResultsXLSX(res, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(book))
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		assert.LessOrEqual(t, len(sheet), 31)
		assert.NotContains(t, sheet, "/")
		assert.NotContains(t, sheet, "*")
	}
}

func TestResultsXLSXEmpty(t *testing.T) {
	book, err := ResultsXLSX(extractor.Results{Success: true}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, book)
}
