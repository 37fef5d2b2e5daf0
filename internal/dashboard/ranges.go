package dashboard

import (
	"math"
	"strings"

	"github.com/wardstats/wardstats/internal/format"
	"github.com/wardstats/wardstats/internal/model"
)

// Long-term target for capacity per 100,000 population, published on the
// statistics homepage.
const (
	TargetLow  = 40.0
	TargetHigh = 50.0
)

// mapFloorCapacityRate keeps the capacity-rate colour scale fixed while values
// stay below it, so months can be compared by shade.
const mapFloorCapacityRate = 60.0

// Range is a closed axis or colour scale range.
type Range struct {
	Min, Max float64
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// maxValue returns the largest non-NaN value of metric, or 0.
func maxValue(metric string, records []model.Record) float64 {
	m := 0.0
	for i := range records {
		v, ok := records[i].Value(metric)
		if !ok || math.IsNaN(v) {
			continue
		}
		m = math.Max(m, v)
	}
	return m
}

// MapRange returns the colour scale range for the map: [0, max], widened to at
// least 60 for capacity per population.
func MapRange(metric string, records []model.Record) Range {
	m := maxValue(metric, records)
	if metric == model.ColCapacityPerPopulation {
		m = math.Max(m, mapFloorCapacityRate)
	}
	return Range{Min: 0, Max: m}
}

// TimeseriesRange returns the y-axis range of the time series. Capacity per
// population always shows the target band.
func TimeseriesRange(metric string, records []model.Record) Range {
	m := maxValue(metric, records)
	if metric == model.ColCapacityPerPopulation {
		return Range{Min: 0, Max: math.Max(m+1, TargetHigh)}
	}
	if m == 0 {
		m = 1
	}
	return Range{Min: 0, Max: m * 1.05}
}

// ShowTarget reports whether the target band is drawn for metric.
func ShowTarget(metric string) bool {
	return metric == model.ColCapacityPerPopulation
}

// ValueLabel formats a record's metric with spec. Suppressed occupancy values
// get a trailing "*", as in the published workbooks.
func ValueLabel(spec, metric string, rec *model.Record) string {
	v, ok := rec.Value(metric)
	if !ok {
		return ""
	}
	s := format.Value(spec, v)
	if metric == model.ColOccupancy && rec.Suppressed {
		s += "*"
	}
	return s
}

// AxisTitle trims a selector label to the text before its first "(".
func AxisTitle(label string) string {
	if i := strings.IndexByte(label, '('); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}
