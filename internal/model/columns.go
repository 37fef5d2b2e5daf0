package model

// Canonical column names used in staging files, the master table and the
// rename table in config.yml.
const (
	ColDate                  = "date"
	ColRegion                = "region"
	ColICBCode               = "icb_code"
	ColICBName               = "icb_name"
	ColCapacity              = "capacity"
	ColCapacityPerPopulation = "capacity_per_population"
	ColPopulation            = "population"
	ColPatients              = "patients"
	ColOccupancy             = "occupancy"
	ColSuppressed            = "suppressed"
)

// RecordColumns returns the ordered column names of a staging or master CSV file.
func RecordColumns() []string {
	return []string{
		ColDate,
		ColICBCode,
		ColCapacity,
		ColCapacityPerPopulation,
		ColPopulation,
		ColPatients,
		ColOccupancy,
		ColSuppressed,
	}
}

// Metric is a numeric column that can be plotted on the dashboard.
type Metric struct {
	Name   string // column name, e.g. "capacity"
	Column string // database column
}

// AllMetrics lists the plottable metrics in canonical order.
var AllMetrics = []Metric{
	{Name: ColCapacity, Column: "capacity"},
	{Name: ColCapacityPerPopulation, Column: "capacity_per_100k"},
	{Name: ColPopulation, Column: "gp_population"},
	{Name: ColPatients, Column: "patients"},
	{Name: ColOccupancy, Column: "occupancy"},
}

// MetricByName returns the Metric for the given name, or ok=false.
func MetricByName(name string) (Metric, bool) {
	for _, m := range AllMetrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}
