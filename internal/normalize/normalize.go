package normalize

import (
	"fmt"
	"time"

	"github.com/wardstats/wardstats/internal/model"
)

// Normalize turns the grid of one raw monthly sheet into clean records stamped
// with the reporting month derived from rawFilename.
func Normalize(rawFilename string, grid [][]string, renames map[string]string) ([]model.Record, error) {
	date, err := DeriveDate(rawFilename)
	if err != nil {
		return nil, err
	}
	t, err := Extract(grid)
	if err != nil {
		return nil, err
	}
	t = CleanLabels(t, renames)
	if t, err = DropColumns(t, model.ColRegion, model.ColICBName); err != nil {
		return nil, err
	}
	if t, err = ValidRegionRows(t); err != nil {
		return nil, err
	}
	return Records(t, date)
}

// Extract locates the embedded data table of a raw sheet and strips layout
// padding columns.
func Extract(grid [][]string) (Table, error) {
	header, err := HeaderRow(grid)
	if err != nil {
		return Table{}, err
	}
	return DropEmptyColumns(PromoteHeader(grid, header)), nil
}

// Records converts a cleaned table into records for the given month.
//
// Suppressed occupancy values are replaced with 1.0 and flagged so the
// dashboard can annotate them. Suppressed rows come first, then the rest, each
// in sheet order.
func Records(t Table, date time.Time) ([]model.Record, error) {
	idx := map[string]int{}
	for _, col := range []string{
		model.ColICBCode,
		model.ColCapacity,
		model.ColCapacityPerPopulation,
		model.ColPopulation,
		model.ColPatients,
		model.ColOccupancy,
	} {
		i := t.Index(col)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		idx[col] = i
	}

	var suppressed, rest []model.Record
	for _, row := range t.Rows {
		occ := row[idx[model.ColOccupancy]]
		rec := model.Record{
			Date:                  date,
			ICBCode:               row[idx[model.ColICBCode]],
			Capacity:              ParseNumber(row[idx[model.ColCapacity]]),
			CapacityPerPopulation: ParseNumber(row[idx[model.ColCapacityPerPopulation]]),
			Population:            ParseNumber(row[idx[model.ColPopulation]]),
			Patients:              ParseNumber(row[idx[model.ColPatients]]),
			Occupancy:             ParseNumber(occ),
			Suppressed:            IsSuppressed(occ),
		}
		if rec.Suppressed {
			rec.Occupancy = 1.0
			suppressed = append(suppressed, rec)
			continue
		}
		rest = append(rest, rec)
	}
	return append(suppressed, rest...), nil
}
