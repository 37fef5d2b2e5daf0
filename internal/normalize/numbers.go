package normalize

import (
	"math"
	"strconv"
	"strings"
)

// SuppressionMarker ends the text of an occupancy value the publisher withheld.
const SuppressionMarker = "*"

// ParseNumber converts a sheet cell into a float64. Thousands separators and a
// trailing suppression marker are ignored; a trailing "%" divides by 100.
// Empty or unparseable cells return NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, SuppressionMarker)
	s = strings.ReplaceAll(s, ",", "")
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		scale = 100
	}
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v / scale
}

// IsSuppressed reports whether the cell text carries the suppression marker.
func IsSuppressed(s string) bool {
	return strings.HasSuffix(s, SuppressionMarker)
}

// FormatNumber renders a value for staging files. The shortest exact
// representation keeps re-runs byte-identical; NaN is written as "".
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
