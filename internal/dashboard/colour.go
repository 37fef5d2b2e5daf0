package dashboard

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

var (
	missingColour = color.RGBA{R: 0xd8, G: 0xdd, B: 0xe0, A: 0xff}
	borderColour  = color.RGBA{R: 0x76, G: 0x86, B: 0x92, A: 0xff}
)

// parseHex parses "#RRGGBB".
func parseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Scale maps values in a Range onto a linear gradient between two colours.
type Scale struct {
	Range Range
	Low   color.RGBA
	High  color.RGBA
}

// Colour returns the colour for v. NaN maps to a neutral grey.
func (s Scale) Colour(v float64) color.RGBA {
	if math.IsNaN(v) {
		return missingColour
	}
	t := 0.0
	if span := s.Range.Span(); span > 0 {
		t = (v - s.Range.Min) / span
	}
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
	}
	return color.RGBA{R: mix(s.Low.R, s.High.R), G: mix(s.Low.G, s.High.G), B: mix(s.Low.B, s.High.B), A: 0xff}
}

// CSS returns the colour as "#rrggbb".
func CSS(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
