package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Write saves grid as the data sheet of a new two-sheet workbook laid out like
// a published release. Go numeric values are stored as numeric cells, strings
// as text cells.
func Write(path string, grid [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	cover := f.GetSheetName(0)
	if err := f.SetCellValue(cover, "A1", "Virtual Ward Capacity and Occupancy"); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}
	const data = "Data"
	if _, err := f.NewSheet(data); err != nil {
		return fmt.Errorf("add data sheet: %w", err)
	}
	for r, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(data, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
