// Package geo loads ICB boundary polygons and answers which board contains a
// point.
package geo

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/wardstats/wardstats/internal/config"
)

// ErrGeometry is returned for a feature that is not a polygon or multipolygon.
var ErrGeometry = errors.New("unsupported boundary geometry")

// Boundary is one ICB outline keyed by its short code.
type Boundary struct {
	Code     string
	Name     string
	Polygons []*geom.Polygon
}

// Contains reports whether (lon, lat) lies inside the boundary. Holes are
// respected: a point inside an inner ring is outside the polygon.
func (b *Boundary) Contains(lon, lat float64) bool {
	pt := geom.Coord{lon, lat}
	for _, p := range b.Polygons {
		if p.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for i := 1; i < p.NumLinearRings(); i++ {
			if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Set is the loaded collection of boundaries, ordered by code.
type Set struct {
	Boundaries []Boundary
	byCode     map[string]int
	bounds     *geom.Bounds
}

// NewSet builds a Set from boundaries.
func NewSet(boundaries []Boundary) *Set {
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Code < boundaries[j].Code })
	s := &Set{
		Boundaries: boundaries,
		byCode:     make(map[string]int, len(boundaries)),
		bounds:     geom.NewBounds(geom.XY),
	}
	for i, b := range boundaries {
		s.byCode[b.Code] = i
		for _, p := range b.Polygons {
			s.bounds.Extend(p)
		}
	}
	return s
}

// Lookup returns the boundary for a short code.
func (s *Set) Lookup(code string) (*Boundary, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return nil, false
	}
	return &s.Boundaries[i], true
}

// Name returns the ICB name for a short code, or the code itself.
func (s *Set) Name(code string) string {
	if b, ok := s.Lookup(code); ok && b.Name != "" {
		return b.Name
	}
	return code
}

// Locate returns the code of the boundary containing (lon, lat).
func (s *Set) Locate(lon, lat float64) (string, bool) {
	if s.bounds.IsEmpty() {
		return "", false
	}
	if lon < s.bounds.Min(0) || lon > s.bounds.Max(0) || lat < s.bounds.Min(1) || lat > s.bounds.Max(1) {
		return "", false
	}
	for i := range s.Boundaries {
		if s.Boundaries[i].Contains(lon, lat) {
			return s.Boundaries[i].Code, true
		}
	}
	return "", false
}

// Bounds returns the bounding box of every boundary.
func (s *Set) Bounds() *geom.Bounds {
	return s.bounds.Clone()
}

// Load reads the boundary GeoJSON and the code lookup CSV. Features are keyed
// by the long code property and translated to short codes; features without a
// lookup entry are logged and dropped.
func Load(boundaryPath, lookupPath string, bc config.BoundaryConfig, log zerolog.Logger) (*Set, error) {
	lookup, err := readLookup(lookupPath, bc)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(boundaryPath)
	if err != nil {
		return nil, fmt.Errorf("open boundaries: %w", err)
	}
	defer f.Close()
	return Decode(f, lookup, bc.FeatureKey, log)
}

// Entry is one row of the code lookup.
type Entry struct {
	Short string
	Name  string
}

// Decode reads a GeoJSON FeatureCollection from r and keys it through lookup.
func Decode(r io.Reader, lookup map[string]Entry, featureKey string, log zerolog.Logger) (*Set, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode boundaries: %w", err)
	}

	var boundaries []Boundary
	for _, feat := range fc.Features {
		long, _ := feat.Properties[featureKey].(string)
		entry, ok := lookup[long]
		if !ok {
			log.Warn().Str("feature", long).Msg("boundary has no lookup entry, dropping")
			continue
		}
		polys, err := polygons(feat.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", long, err)
		}
		boundaries = append(boundaries, Boundary{Code: entry.Short, Name: entry.Name, Polygons: polys})
	}
	return NewSet(boundaries), nil
}

func polygons(g geom.T) ([]*geom.Polygon, error) {
	switch g := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{g}, nil
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			out = append(out, g.Polygon(i))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrGeometry, g)
	}
}

func readLookup(path string, bc config.BoundaryConfig) (map[string]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lookup: %w", err)
	}
	defer f.Close()
	return ReadLookup(f, bc)
}

// ReadLookup parses the long-code to short-code CSV using the configured
// column names.
func ReadLookup(r io.Reader, bc config.BoundaryConfig) (map[string]Entry, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read lookup header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	for _, name := range []string{bc.LookupLong, bc.LookupShort, bc.LookupName} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("lookup missing column %q", name)
		}
	}

	out := map[string]Entry{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read lookup: %w", err)
		}
		out[row[col[bc.LookupLong]]] = Entry{Short: row[col[bc.LookupShort]], Name: row[col[bc.LookupName]]}
	}
	return out, nil
}
