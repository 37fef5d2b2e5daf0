package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wardstats/wardstats/internal/model"
)

var testRenames = map[string]string{
	"Region":                   model.ColRegion,
	"ICB Code":                 model.ColICBCode,
	"ICB Name":                 model.ColICBName,
	"Capacity":                 model.ColCapacity,
	"Capacity per 100,000":     model.ColCapacityPerPopulation,
	"GP Registered Population": model.ColPopulation,
	"Patients":                 model.ColPatients,
	"Occupancy":                model.ColOccupancy,
}

// rawSheet mimics a published sheet: title rows, a padding column, footnoted
// labels and the England aggregate row.
func rawSheet() [][]string {
	return [][]string{
		{"Virtual Ward Capacity and Occupancy"},
		{"Published 14 March 2024"},
		{},
		{"Region", "ICB Code", "ICB Name", "", "Capacity\n[note 1]", "Capacity per 100,000\n[note 2]", "GP Registered Population", "Patients\n[note 3]", "Occupancy\n[note 4]"},
		{"England", "EN", "England", "", "12000", "25.1", "47000000", "9000", "0.75"},
		{"North East and Yorkshire", "QHM", "NHS Cumbria and North East ICB", "", "500", "21.3", "2345678", "400", "0.8"},
		{"London", "QMJ", "NHS North Central London ICB", "", "120", "10.2", "1176000", "130", "100%*"},
	}
}

func TestNormalize_RawSheet(t *testing.T) {
	got, err := Normalize("2024_02_Monthly_Virtual_Ward.xlsx", rawSheet(), testRenames)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	want := []model.Record{
		{Date: feb, ICBCode: "QMJ", Capacity: 120, CapacityPerPopulation: 10.2, Population: 1176000, Patients: 130, Occupancy: 1.0, Suppressed: true},
		{Date: feb, ICBCode: "QHM", Capacity: 500, CapacityPerPopulation: 21.3, Population: 2345678, Patients: 400, Occupancy: 0.8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	a, err := Normalize("2024_02_Monthly_Virtual_Ward.xlsx", rawSheet(), testRenames)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Normalize("2024_02_Monthly_Virtual_Ward.xlsx", rawSheet(), testRenames)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("re-run differs:\n%s", diff)
	}
}

func TestHeaderRow(t *testing.T) {
	// Sheet row 0 holds the title; the last column reads "text", "2", "3" below it.
	grid := [][]string{
		{"Table 1", "", ""},
		{"a", "b", "text"},
		{"x", "y", "2"},
		{"z", "w", "3"},
	}
	got, err := HeaderRow(grid)
	if err != nil {
		t.Fatalf("HeaderRow: %v", err)
	}
	if got != 1 {
		t.Errorf("HeaderRow = %d, want 1", got)
	}
}

func TestHeaderRow_RaggedRows(t *testing.T) {
	grid := rawSheet()
	got, err := HeaderRow(grid)
	if err != nil {
		t.Fatalf("HeaderRow: %v", err)
	}
	if got != 3 {
		t.Errorf("HeaderRow = %d, want 3", got)
	}
}

func TestHeaderRow_NotFound(t *testing.T) {
	cases := map[string][][]string{
		"empty":       nil,
		"no digits":   {{"title"}, {"a", "b"}, {"c", "d"}},
		"digit first": {{"1", "2"}, {"3", "4"}},
	}
	for name, grid := range cases {
		if _, err := HeaderRow(grid); !errors.Is(err, ErrHeaderNotFound) {
			t.Errorf("%s: expected ErrHeaderNotFound, got %v", name, err)
		}
	}
}

func TestCleanLabel(t *testing.T) {
	cases := map[string]string{
		"Capacity\n[note 1]": "Capacity",
		"  ICB Code  ":       "ICB Code",
		"Occupancy \n\n[2]":  "Occupancy",
		"":                   "",
	}
	for in, want := range cases {
		if got := CleanLabel(in); got != want {
			t.Errorf("CleanLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDropEmptyColumns(t *testing.T) {
	in := Table{
		Columns: []string{"a", "", "b", "c"},
		Rows: [][]string{
			{"1", "", "", "x"},
			{"2", "", "3", ""},
		},
	}
	got := DropEmptyColumns(in)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"1", "", "x"}, {"2", "3", ""}}, got.Rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestDropColumns_Missing(t *testing.T) {
	in := Table{Columns: []string{model.ColRegion, model.ColICBCode}}
	if _, err := DropColumns(in, model.ColRegion, model.ColICBName); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestValidRegionRows(t *testing.T) {
	in := Table{
		Columns: []string{model.ColICBCode},
		Rows:    [][]string{{"E"}, {"ABC"}, {"AB"}},
	}
	got, err := ValidRegionRows(in)
	if err != nil {
		t.Fatalf("ValidRegionRows: %v", err)
	}
	if diff := cmp.Diff([][]string{{"ABC"}}, got.Rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestRecords_Suppression(t *testing.T) {
	in := Table{
		Columns: []string{
			model.ColICBCode, model.ColCapacity, model.ColCapacityPerPopulation,
			model.ColPopulation, model.ColPatients, model.ColOccupancy,
		},
		Rows: [][]string{
			{"QE1", "10", "1.5", "1000", "9", "95%"},
			{"QF7", "20", "2.5", "2000", "25", "100%*"},
		},
	}
	date := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)
	got, err := Records(in, date)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	byCode := map[string]model.Record{}
	for _, r := range got {
		byCode[r.ICBCode] = r
	}
	if r := byCode["QF7"]; !r.Suppressed || r.Occupancy != 1.0 {
		t.Errorf("QF7: suppressed=%v occupancy=%v, want true 1.0", r.Suppressed, r.Occupancy)
	}
	if r := byCode["QE1"]; r.Suppressed || r.Occupancy != 0.95 {
		t.Errorf("QE1: suppressed=%v occupancy=%v, want false 0.95", r.Suppressed, r.Occupancy)
	}
	for _, r := range got {
		if !r.Date.Equal(date) {
			t.Errorf("%s: date = %v, want %v", r.ICBCode, r.Date, date)
		}
	}
}

func TestRecords_MissingValues(t *testing.T) {
	in := Table{
		Columns: []string{
			model.ColICBCode, model.ColCapacity, model.ColCapacityPerPopulation,
			model.ColPopulation, model.ColPatients, model.ColOccupancy,
		},
		Rows: [][]string{{"QE1", "", "-", "1,000", "9", "0.5"}},
	}
	got, err := Records(in, time.Time{})
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	want := []model.Record{{
		ICBCode: "QE1", Capacity: math.NaN(), CapacityPerPopulation: math.NaN(),
		Population: 1000, Patients: 9, Occupancy: 0.5,
	}}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestRecords_MissingColumn(t *testing.T) {
	in := Table{Columns: []string{model.ColICBCode, model.ColCapacity}}
	if _, err := Records(in, time.Time{}); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}
