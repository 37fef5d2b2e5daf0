// Package sheet reads the data sheet of a published monthly workbook into a
// plain grid of cell text.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DataSheetIndex is the position of the data sheet; sheet 0 is the cover page.
const DataSheetIndex = 1

// Read opens the workbook at path and returns the data sheet as a rectangular
// grid. Cells hold their raw values ("0.95", not "95%"), so numeric cells parse
// exactly while text cells such as "100%*" keep their markers. Rows are padded
// with empty strings to the width of the widest row.
func Read(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) <= DataSheetIndex {
		return nil, fmt.Errorf("workbook %s has %d sheets, want at least %d", path, len(sheets), DataSheetIndex+1)
	}

	rows, err := f.GetRows(sheets[DataSheetIndex], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[DataSheetIndex], err)
	}
	return rectangular(rows), nil
}

func rectangular(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = make([]string, width)
		copy(grid[i], row)
	}
	return grid
}
