package dashboard

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/wardstats/wardstats/internal/format"
	"github.com/wardstats/wardstats/internal/geo"
	"github.com/wardstats/wardstats/internal/model"
)

// Image sizes in pixels. Canvases are rendered at 72 dpi so one point is one pixel.
const (
	MapWidth         = 560
	MapHeight        = 680
	TimeseriesWidth  = 520
	TimeseriesHeight = 380
	dpi              = 72
)

const targetLabel = `Long-term target: 40-50 virtual ward "beds" per 100,000 people`

// Palette holds the NHS colours used by the charts.
type Palette struct {
	Blue      color.RGBA
	DarkBlue  color.RGBA
	LightBlue color.RGBA
	White     color.RGBA
}

// NewPalette reads the palette from the nhs_colours config map.
func NewPalette(colours map[string]string) (Palette, error) {
	var p Palette
	for key, dst := range map[string]*color.RGBA{
		"BLUE":       &p.Blue,
		"DARK_BLUE":  &p.DarkBlue,
		"LIGHT_BLUE": &p.LightBlue,
		"WHITE":      &p.White,
	} {
		hex, ok := colours[key]
		if !ok {
			return Palette{}, fmt.Errorf("nhs_colours: missing %s", key)
		}
		c, err := parseHex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("nhs_colours: %w", err)
		}
		*dst = c
	}
	return p, nil
}

// MapScale returns the colour scale of the map for records.
func (p Palette) MapScale(metric string, records []model.Record) Scale {
	return Scale{Range: MapRange(metric, records), Low: p.White, High: p.DarkBlue}
}

// RenderMap draws every boundary filled by its metric value as a PNG. The
// selected ICB is outlined.
func RenderMap(w io.Writer, set *geo.Set, proj Projection, scale Scale, metric string, records []model.Record, selected string) error {
	values := make(map[string]float64, len(records))
	for i := range records {
		if v, ok := records[i].Value(metric); ok {
			values[records[i].ICBCode] = v
		}
	}

	c := vgimg.NewWith(vgimg.UseWH(vg.Length(MapWidth), vg.Length(MapHeight)), vgimg.UseDPI(dpi))
	var sel *geo.Boundary
	for i := range set.Boundaries {
		b := &set.Boundaries[i]
		v, ok := values[b.Code]
		if !ok {
			v = math.NaN()
		}
		fillBoundary(c, proj, b, scale.Colour(v))
		strokeBoundary(c, proj, b, borderColour, 0.5)
		if b.Code == selected {
			sel = b
		}
	}
	if sel != nil {
		strokeBoundary(c, proj, sel, color.RGBA{A: 0xff}, 2)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	return nil
}

// ringPath converts a flat XY ring to a canvas path. Canvas y grows upwards.
func ringPath(proj Projection, flat []float64, stride int) vg.Path {
	var path vg.Path
	for i := 0; i+1 < len(flat); i += stride {
		x, y := proj.Forward(flat[i], flat[i+1])
		pt := vg.Point{X: vg.Length(x), Y: vg.Length(MapHeight - y)}
		if i == 0 {
			path.Move(pt)
			continue
		}
		path.Line(pt)
	}
	path.Close()
	return path
}

func fillBoundary(c *vgimg.Canvas, proj Projection, b *geo.Boundary, fill color.Color) {
	for _, poly := range b.Polygons {
		stride := poly.Stride()
		for r := 0; r < poly.NumLinearRings(); r++ {
			// Holes are painted over with the background.
			col := fill
			if r > 0 {
				col = color.White
			}
			c.SetColor(col)
			c.Fill(ringPath(proj, poly.LinearRing(r).FlatCoords(), stride))
		}
	}
}

func strokeBoundary(c *vgimg.Canvas, proj Projection, b *geo.Boundary, col color.Color, width float64) {
	c.SetColor(col)
	c.SetLineWidth(vg.Points(width))
	for _, poly := range b.Polygons {
		stride := poly.Stride()
		for r := 0; r < poly.NumLinearRings(); r++ {
			c.Stroke(ringPath(proj, poly.LinearRing(r).FlatCoords(), stride))
		}
	}
}

// valueTicks labels the default ticks with a metric formatter.
type valueTicks struct {
	spec string
}

func (t valueTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = format.Value(t.spec, ticks[i].Value)
		}
	}
	return ticks
}

// TimeseriesView describes one time series chart.
type TimeseriesView struct {
	Title   string
	YTitle  string
	Spec    string
	Metric  string
	Records []model.Record // one ICB in date order
}

// RenderTimeseries draws the metric for one ICB over time as a PNG. Capacity
// per population gets the target band; suppressed occupancy points are marked.
func RenderTimeseries(w io.Writer, palette Palette, v TimeseriesView) error {
	if len(v.Records) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = v.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = v.YTitle
	p.X.Tick.Marker = plot.TimeTicks{Format: "01/06"}
	p.Y.Tick.Marker = valueTicks{spec: v.Spec}
	r := TimeseriesRange(v.Metric, v.Records)
	p.Y.Min, p.Y.Max = r.Min, r.Max
	p.Legend.Top = true

	var line, suppressed plotter.XYs
	for i := range v.Records {
		rec := &v.Records[i]
		y, ok := rec.Value(v.Metric)
		if !ok || math.IsNaN(y) {
			continue
		}
		pt := plotter.XY{X: float64(rec.Date.Unix()), Y: y}
		line = append(line, pt)
		if v.Metric == model.ColOccupancy && rec.Suppressed {
			suppressed = append(suppressed, pt)
		}
	}

	if ShowTarget(v.Metric) {
		x0 := float64(v.Records[0].Date.AddDate(0, 0, -15).Unix())
		x1 := float64(v.Records[len(v.Records)-1].Date.AddDate(0, 0, 15).Unix())
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: x0, Y: TargetLow}, {X: x1, Y: TargetLow},
			{X: x1, Y: TargetHigh}, {X: x0, Y: TargetHigh},
		})
		if err != nil {
			return fmt.Errorf("target band: %w", err)
		}
		lb := palette.LightBlue
		band.Color = color.NRGBA{R: lb.R, G: lb.G, B: lb.B, A: 0x33}
		band.LineStyle.Width = 0
		p.Add(band)
		p.Legend.Add(targetLabel, band)
	}

	if len(line) > 0 {
		l, err := plotter.NewLine(line)
		if err != nil {
			return fmt.Errorf("series: %w", err)
		}
		l.Color = palette.Blue
		l.Width = vg.Points(2)
		p.Add(l)
	}
	if len(suppressed) > 0 {
		s, err := plotter.NewScatter(suppressed)
		if err != nil {
			return fmt.Errorf("suppressed points: %w", err)
		}
		s.GlyphStyle.Shape = draw.RingGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Color = palette.DarkBlue
		p.Add(s)
		p.Legend.Add("Suppressed (shown as 100%*)", s)
	}

	wt, err := p.WriterTo(vg.Length(TimeseriesWidth), vg.Length(TimeseriesHeight), "png")
	if err != nil {
		return fmt.Errorf("render timeseries: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode timeseries: %w", err)
	}
	return nil
}
