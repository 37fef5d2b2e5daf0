package dashboard

import (
	"math"

	geom "github.com/twpayne/go-geom"

	"github.com/wardstats/wardstats/internal/config"
)

// Projection is a linear lon/lat to pixel mapping centred on the map centre.
// Longitudes are scaled by cos(centre latitude) so shapes keep their aspect
// near the centre. Pixel y grows downwards.
type Projection struct {
	centre config.Coordinate
	kx     float64
	scale  float64
	width  float64
	height float64
}

const mapPadding = 0.95

// NewProjection fits bounds into a width x height image centred on centre.
func NewProjection(b *geom.Bounds, centre config.Coordinate, width, height int) Projection {
	p := Projection{
		centre: centre,
		kx:     math.Cos(centre.Lat * math.Pi / 180),
		width:  float64(width),
		height: float64(height),
		scale:  1,
	}
	if b == nil || b.IsEmpty() {
		return p
	}
	halfX := math.Max(math.Abs(b.Min(0)-centre.Lon), math.Abs(b.Max(0)-centre.Lon)) * p.kx
	halfY := math.Max(math.Abs(b.Min(1)-centre.Lat), math.Abs(b.Max(1)-centre.Lat))
	sx, sy := math.Inf(1), math.Inf(1)
	if halfX > 0 {
		sx = p.width / (2 * halfX)
	}
	if halfY > 0 {
		sy = p.height / (2 * halfY)
	}
	if s := math.Min(sx, sy); !math.IsInf(s, 1) {
		p.scale = s * mapPadding
	}
	return p
}

// Forward returns the pixel position of (lon, lat).
func (p Projection) Forward(lon, lat float64) (x, y float64) {
	x = p.width/2 + (lon-p.centre.Lon)*p.kx*p.scale
	y = p.height/2 - (lat-p.centre.Lat)*p.scale
	return x, y
}

// Inverse returns the lon/lat under pixel (x, y).
func (p Projection) Inverse(x, y float64) (lon, lat float64) {
	lon = p.centre.Lon + (x-p.width/2)/(p.kx*p.scale)
	lat = p.centre.Lat - (y-p.height/2)/p.scale
	return lon, lat
}
