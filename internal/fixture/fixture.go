// Package fixture builds synthetic monthly workbooks laid out like the
// published releases, for tests and local development.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wardstats/wardstats/internal/fetch"
	"github.com/wardstats/wardstats/internal/sheet"
)

// Header is the header row of a release sheet, including footnote markers and
// the empty padding column the publisher leaves after the ICB name.
var Header = []any{
	"Region",
	"ICB Code",
	"ICB Name",
	"",
	"Virtual Ward Capacity\n[note 1]",
	"Virtual Ward Capacity per 100,000 GP registered population aged 16 years and over\n[note 2]",
	"GP Registered Population (Aged 16+)",
	"Number of patients on a Virtual Ward",
	"Virtual Ward Occupancy\n[note 3]",
}

// ICB is one integrated care board row of a release.
type ICB struct {
	Region     string
	Code       string
	Name       string
	Capacity   float64
	Population float64
	Patients   float64
	// Suppressed writes the occupancy cell as "100%*" text.
	Suppressed bool
}

// Occupancy returns patients over capacity, or 1.0 when suppressed.
func (i ICB) Occupancy() float64 {
	if i.Suppressed || i.Capacity == 0 {
		return 1.0
	}
	return i.Patients / i.Capacity
}

// CapacityPerPopulation returns capacity per 100,000 population, rounded to one decimal.
func (i ICB) CapacityPerPopulation() float64 {
	if i.Population == 0 {
		return 0
	}
	v := i.Capacity / i.Population * 100000
	return float64(int64(v*10+0.5)) / 10
}

// ICBs is a small fixed set of boards with plausible sizes.
var ICBs = []ICB{
	{Region: "North East and Yorkshire", Code: "QHM", Name: "NHS Cumbria and North East ICB", Capacity: 520, Population: 2480000, Patients: 410},
	{Region: "London", Code: "QMJ", Name: "NHS North Central London ICB", Capacity: 150, Population: 1230000, Patients: 120},
	{Region: "Midlands", Code: "QT6", Name: "NHS Cornwall and the Isles of Scilly ICB", Capacity: 90, Population: 480000, Patients: 70},
	{Region: "South West", Code: "QUY", Name: "NHS Bristol, North Somerset and South Gloucestershire ICB", Capacity: 200, Population: 790000, Patients: 150},
}

// Grid returns the data sheet of a release for the given boards: two title rows,
// a blank row, the header, the England aggregate row and one row per board.
func Grid(date time.Time, icbs []ICB) [][]any {
	grid := [][]any{
		{"Virtual Ward Capacity and Occupancy"},
		{"Published " + date.AddDate(0, 1, 14).Format("2 January 2006")},
		{},
		Header,
	}
	var total ICB
	for _, i := range icbs {
		total.Capacity += i.Capacity
		total.Population += i.Population
		total.Patients += i.Patients
	}
	grid = append(grid, []any{"England", "EN", "England", "",
		total.Capacity, total.CapacityPerPopulation(), total.Population, total.Patients, total.Occupancy()})
	for _, i := range icbs {
		var occ any = i.Occupancy()
		if i.Suppressed {
			occ = "100%*"
		}
		grid = append(grid, []any{i.Region, i.Code, i.Name, "",
			i.Capacity, i.CapacityPerPopulation(), i.Population, i.Patients, occ})
	}
	return grid
}

// WriteMonth writes a synthetic release workbook for date into dir and returns its path.
func WriteMonth(dir string, date time.Time, icbs []ICB) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	path := filepath.Join(dir, fetch.RawFilename(date))
	if err := sheet.Write(path, Grid(date, icbs)); err != nil {
		return "", err
	}
	return path, nil
}

// Month returns the first day of a month in UTC.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
