// Package export renders a job's extraction results as an XLSX workbook:
// a summary sheet plus one sheet per successfully extracted table entity.
package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/entityxtract/entityxtract/internal/extractor"
	"github.com/entityxtract/entityxtract/internal/schema"
)

const summarySheet = "Summary"

// ResultsXLSX returns an XLSX workbook (as bytes) for one result set.
func ResultsXLSX(results extractor.Results, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	writeCell := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := []string{"Entity", "Shape", "Success", "Message", "Input Tokens", "Output Tokens", "Cost", "Data"}
	for i, h := range headers {
		writeCell(summarySheet, i+1, 1, h)
	}

	row := 2
	for _, res := range results.InOrder() {
		writeCell(summarySheet, 1, row, res.Entity)
		writeCell(summarySheet, 2, row, string(res.Shape))
		writeCell(summarySheet, 3, row, res.Success)
		writeCell(summarySheet, 4, row, res.Message)
		if res.InputTokens != nil {
			writeCell(summarySheet, 5, row, *res.InputTokens)
		}
		if res.OutputTokens != nil {
			writeCell(summarySheet, 6, row, *res.OutputTokens)
		}
		if res.Cost != nil {
			writeCell(summarySheet, 7, row, *res.Cost)
		}
		if res.Success && res.Shape != schema.ShapeTable && res.Data != nil {
			writeCell(summarySheet, 8, row, fmt.Sprintf("%v", res.Data))
		}
		row++

		if res.Success && res.Shape == schema.ShapeTable {
			if err := writeTableSheet(f, res); err != nil {
				return nil, err
			}
		}
	}

	// Totals row
	row++
	writeCell(summarySheet, 1, row, "TOTAL")
	if results.TotalInputTokens != nil {
		writeCell(summarySheet, 5, row, *results.TotalInputTokens)
	}
	if results.TotalOutputTokens != nil {
		writeCell(summarySheet, 6, row, *results.TotalOutputTokens)
	}
	if results.TotalCost != nil {
		writeCell(summarySheet, 7, row, *results.TotalCost)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	logger.Info("export.xlsx.ok", "entities", len(results.Order), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func writeTableSheet(f *excelize.File, res extractor.Result) error {
	rows, ok := res.Data.([]map[string]any)
	if !ok {
		return nil
	}

	sheet := sanitizeSheetName(res.Entity)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	columns := columnOrder(rows)
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for r, rowData := range rows {
		for c, col := range columns {
			if v, ok := rowData[col]; ok {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				_ = f.SetCellValue(sheet, cell, fmt.Sprintf("%v", v))
			}
		}
	}
	return nil
}

// columnOrder collects the union of row keys, first-seen order.
func columnOrder(rows []map[string]any) []string {
	var columns []string
	seen := map[string]struct{}{}
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	return columns
}

// sanitizeSheetName fits an entity name into excelize's sheet constraints.
func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	out := replacer.Replace(name)
	if len(out) > 31 {
		out = out[:31]
	}
	if out == "" || out == summarySheet {
		out = "Table"
	}
	return out
}
