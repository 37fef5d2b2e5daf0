package model

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the on-disk date format for staging, master and parquet files.
const DateLayout = "2006-01-02"

// MasterRow mirrors the parquet schema of the master table. Optional numeric
// fields are nil where the Record holds NaN.
type MasterRow struct {
	Date                  string   `parquet:"date"`
	ICBCode               string   `parquet:"icb_code"`
	Capacity              *float64 `parquet:"capacity,optional"`
	CapacityPerPopulation *float64 `parquet:"capacity_per_population,optional"`
	Population            *float64 `parquet:"population,optional"`
	Patients              *float64 `parquet:"patients,optional"`
	Occupancy             *float64 `parquet:"occupancy,optional"`
	Suppressed            bool     `parquet:"suppressed"`
}

// ToMasterRow converts a Record into its parquet representation.
func ToMasterRow(r *Record) MasterRow {
	return MasterRow{
		Date:                  r.Date.Format(DateLayout),
		ICBCode:               r.ICBCode,
		Capacity:              optFloat(r.Capacity),
		CapacityPerPopulation: optFloat(r.CapacityPerPopulation),
		Population:            optFloat(r.Population),
		Patients:              optFloat(r.Patients),
		Occupancy:             optFloat(r.Occupancy),
		Suppressed:            r.Suppressed,
	}
}

// Record converts the parquet row back into a Record.
func (m *MasterRow) Record() (Record, error) {
	date, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return Record{}, fmt.Errorf("parse date %q: %w", m.Date, err)
	}
	return Record{
		Date:                  date,
		ICBCode:               m.ICBCode,
		Capacity:              derefFloat(m.Capacity),
		CapacityPerPopulation: derefFloat(m.CapacityPerPopulation),
		Population:            derefFloat(m.Population),
		Patients:              derefFloat(m.Patients),
		Occupancy:             derefFloat(m.Occupancy),
		Suppressed:            m.Suppressed,
	}, nil
}

func optFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
