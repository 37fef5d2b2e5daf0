// Package format renders metric values with the d3-style specifiers used in
// config.yml formatters (",.0f", ".1f", ".0%", ",").
package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrSpec is returned for a specifier outside the supported subset.
var ErrSpec = errors.New("unsupported format specifier")

var printer = message.NewPrinter(language.BritishEnglish)

// Spec is a parsed format specifier.
type Spec struct {
	Group     bool // thousands separators
	Precision int  // -1 when unspecified
	Percent   bool
}

// Parse parses a specifier of the form [,][.N][f|%].
func Parse(s string) (Spec, error) {
	spec := Spec{Precision: -1}
	rest := s
	if strings.HasPrefix(rest, ",") {
		spec.Group = true
		rest = rest[1:]
	}
	switch {
	case strings.HasSuffix(rest, "%"):
		spec.Percent = true
		rest = strings.TrimSuffix(rest, "%")
	case strings.HasSuffix(rest, "f"):
		rest = strings.TrimSuffix(rest, "f")
		if rest == "" {
			spec.Precision = 6
		}
	}
	if rest != "" {
		if !strings.HasPrefix(rest, ".") {
			return Spec{}, fmt.Errorf("%w: %q", ErrSpec, s)
		}
		n, err := strconv.Atoi(rest[1:])
		if err != nil || n < 0 {
			return Spec{}, fmt.Errorf("%w: %q", ErrSpec, s)
		}
		spec.Precision = n
	}
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty", ErrSpec)
	}
	return spec, nil
}

// Format renders v. NaN renders as the empty string.
func (s Spec) Format(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	var opts []number.Option
	if s.Precision >= 0 {
		opts = append(opts, number.MinFractionDigits(s.Precision), number.MaxFractionDigits(s.Precision))
	}
	if !s.Group {
		opts = append(opts, number.NoSeparator())
	}
	if s.Percent {
		return printer.Sprint(number.Percent(v, opts...))
	}
	return printer.Sprint(number.Decimal(v, opts...))
}

// Value formats v with the specifier spec. An unsupported specifier falls back
// to the shortest decimal representation.
func Value(spec string, v float64) string {
	s, err := Parse(spec)
	if err != nil {
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s.Format(v)
}
