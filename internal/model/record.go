package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Record is one ICB observation for one reporting month. Numeric fields that
// were missing in the source sheet hold NaN.
type Record struct {
	Date                  time.Time // first day of the reporting month, UTC
	ICBCode               string
	Capacity              float64
	CapacityPerPopulation float64
	Population            float64
	Patients              float64
	Occupancy             float64 // fraction, may exceed 1
	Suppressed            bool
}

// Value returns the value of the named metric, or ok=false for an unknown name.
func (r *Record) Value(metric string) (float64, bool) {
	switch metric {
	case ColCapacity:
		return r.Capacity, true
	case ColCapacityPerPopulation:
		return r.CapacityPerPopulation, true
	case ColPopulation:
		return r.Population, true
	case ColPatients:
		return r.Patients, true
	case ColOccupancy:
		return r.Occupancy, true
	}
	return 0, false
}

// Key identifies a record within the master table.
type Key struct {
	Date    time.Time
	ICBCode string
}

// Key returns the (date, ICB) pair of the record.
func (r *Record) Key() Key {
	return Key{Date: r.Date, ICBCode: r.ICBCode}
}

// CopyColumns returns the ordered column names for COPY into wardstats.virtual_ward_stats.
func CopyColumns() []string {
	cols := []string{"load_batch_id", "report_date", "icb_code"}
	for _, m := range AllMetrics {
		cols = append(cols, m.Column)
	}
	return append(cols, "suppressed")
}

// CopyValues returns the record's values in CopyColumns order. NaN becomes NULL.
func (r *Record) CopyValues(batchID uuid.UUID) []any {
	vals := []any{batchID, r.Date, r.ICBCode}
	for _, m := range AllMetrics {
		v, _ := r.Value(m.Name)
		vals = append(vals, nullable(v))
	}
	return append(vals, r.Suppressed)
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
