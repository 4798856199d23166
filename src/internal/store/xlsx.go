package store

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"publist/src/internal/schema"
)

const xlsxSheet = "Sheet1"

type xlsxBackend struct{}

func (xlsxBackend) read(path string) ([]schema.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return parseGrid(grid)
}

func (xlsxBackend) write(path string, rows []schema.Row) error {
	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(schema.Columns))
	for i, c := range schema.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := xlsxValues(r)
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("row %s: %w", r.DOI, err)
		}
	}
	return writeAtomic(path, func(w io.Writer) error { return f.Write(w) })
}

// xlsxValues keeps year and citation count numeric in the sheet.
func xlsxValues(r schema.Row) []any {
	cells := r.Cells()
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	if r.Year != 0 {
		out[3] = r.Year
	}
	if r.CitationCount != nil {
		out[5] = *r.CitationCount
	}
	return out
}

// parseGrid reads a header row followed by data rows. Fully blank rows are skipped.
func parseGrid(grid [][]string) ([]schema.Row, error) {
	if len(grid) == 0 {
		return nil, nil
	}
	header := grid[0]
	var out []schema.Row
	for i, cells := range grid[1:] {
		if blank(cells) {
			continue
		}
		r, err := schema.ParseRow(header, cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
