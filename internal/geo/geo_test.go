package geo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wardstats/wardstats/internal/config"
)

// Two boards: AAA is a square with a square hole, BBB a two-part multipolygon.
// CCC has no lookup entry.
const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ICB22CD": "E54000001"},
     "geometry": {"type": "Polygon", "coordinates": [
       [[0,0],[4,0],[4,4],[0,4],[0,0]],
       [[1,1],[2,1],[2,2],[1,2],[1,1]]
     ]}},
    {"type": "Feature", "properties": {"ICB22CD": "E54000002"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[5,0],[6,0],[6,1],[5,1],[5,0]]],
       [[[7,3],[8,3],[8,4],[7,4],[7,3]]]
     ]}},
    {"type": "Feature", "properties": {"ICB22CD": "E54000003"},
     "geometry": {"type": "Polygon", "coordinates": [[[10,10],[11,10],[11,11],[10,10]]]}}
  ]
}`

const testLookup = `ICB22CD,ICB22CDH,ICB22NM
E54000001,AAA,NHS Alpha ICB
E54000002,BBB,NHS Beta ICB
`

func testSet(t *testing.T) *Set {
	t.Helper()
	bc := config.Default().Boundaries
	lookup, err := ReadLookup(strings.NewReader(testLookup), bc)
	if err != nil {
		t.Fatalf("ReadLookup: %v", err)
	}
	s, err := Decode(strings.NewReader(testGeoJSON), lookup, bc.FeatureKey, zerolog.Nop())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return s
}

func TestDecode_DropsUnknown(t *testing.T) {
	s := testSet(t)
	if len(s.Boundaries) != 2 {
		t.Fatalf("boundaries = %d, want 2", len(s.Boundaries))
	}
	if s.Boundaries[0].Code != "AAA" || s.Boundaries[1].Code != "BBB" {
		t.Errorf("codes = %s, %s", s.Boundaries[0].Code, s.Boundaries[1].Code)
	}
	if got := s.Name("BBB"); got != "NHS Beta ICB" {
		t.Errorf("Name(BBB) = %q", got)
	}
	if got := s.Name("ZZZ"); got != "ZZZ" {
		t.Errorf("Name(ZZZ) = %q", got)
	}
}

func TestLocate(t *testing.T) {
	s := testSet(t)
	cases := []struct {
		lon, lat float64
		want     string
		ok       bool
	}{
		{3, 3, "AAA", true},
		{1.5, 1.5, "", false}, // inside the hole
		{5.5, 0.5, "BBB", true},
		{7.5, 3.5, "BBB", true},
		{6.5, 2, "", false},
		{10.5, 10.2, "", false}, // dropped feature
		{-1, -1, "", false},
	}
	for _, c := range cases {
		got, ok := s.Locate(c.lon, c.lat)
		if got != c.want || ok != c.ok {
			t.Errorf("Locate(%v, %v) = %q, %v; want %q, %v", c.lon, c.lat, got, ok, c.want, c.ok)
		}
	}
}

func TestBounds(t *testing.T) {
	b := testSet(t).Bounds()
	if b.Min(0) != 0 || b.Min(1) != 0 || b.Max(0) != 8 || b.Max(1) != 4 {
		t.Errorf("bounds = [%v %v] [%v %v]", b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	}
}

func TestDecode_UnsupportedGeometry(t *testing.T) {
	const pointGeoJSON = `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"ICB22CD":"E54000001"},"geometry":{"type":"Point","coordinates":[1,1]}}]}`
	lookup := map[string]Entry{"E54000001": {Short: "AAA"}}
	_, err := Decode(strings.NewReader(pointGeoJSON), lookup, "ICB22CD", zerolog.Nop())
	if !errors.Is(err, ErrGeometry) {
		t.Errorf("err = %v, want ErrGeometry", err)
	}
}

func TestReadLookup_MissingColumn(t *testing.T) {
	_, err := ReadLookup(strings.NewReader("code,name\nA,B\n"), config.Default().Boundaries)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	bc := config.Default().Boundaries
	if err := os.WriteFile(filepath.Join(dir, "b.geojson"), []byte(testGeoJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "l.csv"), []byte(testLookup), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(filepath.Join(dir, "b.geojson"), filepath.Join(dir, "l.csv"), bc, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s.Lookup("AAA"); !ok {
		t.Error("AAA missing after Load")
	}
}
