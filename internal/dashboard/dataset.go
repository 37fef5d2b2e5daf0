// Package dashboard serves the interactive view of the master table: a
// choropleth map of one metric for one month and the time series of the
// selected ICB.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wardstats/wardstats/internal/model"
)

var (
	// ErrNoData is returned when a date has no records.
	ErrNoData = errors.New("no data for date")
	// ErrUnknownMetric is returned for a metric outside the selector options.
	ErrUnknownMetric = errors.New("unknown metric")
)

// DateLabelLayout formats reporting months on the slider, e.g. "02/2024".
const DateLabelLayout = "01/2006"

// Dataset is the master table held in memory by the dashboard. It is built
// once and only read afterwards.
type Dataset struct {
	records []model.Record
	dates   []time.Time
	labels  []string
}

// NewDataset indexes records by reporting month.
func NewDataset(records []model.Record) *Dataset {
	d := &Dataset{records: append([]model.Record(nil), records...)}
	seen := map[time.Time]struct{}{}
	for i := range d.records {
		t := d.records[i].Date
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		d.dates = append(d.dates, t)
	}
	sort.Slice(d.dates, func(i, j int) bool { return d.dates[i].Before(d.dates[j]) })
	d.labels = make([]string, len(d.dates))
	for i, t := range d.dates {
		d.labels[i] = t.Format(DateLabelLayout)
	}
	return d
}

// Dates returns the distinct reporting months in ascending order.
func (d *Dataset) Dates() []time.Time { return d.dates }

// Labels returns the slider label for each entry of Dates.
func (d *Dataset) Labels() []string { return d.labels }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Latest returns the most recent reporting month.
func (d *Dataset) Latest() (time.Time, bool) {
	if len(d.dates) == 0 {
		return time.Time{}, false
	}
	return d.dates[len(d.dates)-1], true
}

// FilterDate returns the records for one reporting month in master order. The
// zero time selects the most recent month.
func (d *Dataset) FilterDate(date time.Time) ([]model.Record, error) {
	if date.IsZero() {
		latest, ok := d.Latest()
		if !ok {
			return nil, ErrNoData
		}
		date = latest
	}
	var out []model.Record
	for i := range d.records {
		if d.records[i].Date.Equal(date) {
			out = append(out, d.records[i])
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, date.Format(model.DateLayout))
	}
	return out, nil
}

// Region returns every record for one ICB in date order.
func (d *Dataset) Region(code string) []model.Record {
	var out []model.Record
	for i := range d.records {
		if d.records[i].ICBCode == code {
			out = append(out, d.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
