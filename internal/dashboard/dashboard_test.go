package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	geom "github.com/twpayne/go-geom"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/geo"
	"github.com/wardstats/wardstats/internal/model"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func testRecords() []model.Record {
	dec, jan := month(2023, time.December), month(2024, time.January)
	return []model.Record{
		{Date: dec, ICBCode: "QT6", Capacity: 80, CapacityPerPopulation: 16.7, Population: 480000, Patients: 60, Occupancy: 0.75},
		{Date: dec, ICBCode: "QHM", Capacity: 500, CapacityPerPopulation: 20.2, Population: 2480000, Patients: 410, Occupancy: 0.82},
		{Date: jan, ICBCode: "QT6", Capacity: 90, CapacityPerPopulation: 18.8, Population: 480000, Patients: 95, Occupancy: 1.0, Suppressed: true},
		{Date: jan, ICBCode: "QHM", Capacity: 520, CapacityPerPopulation: 21.0, Population: 2480000, Patients: 410, Occupancy: 0.79},
	}
}

func square(x0, y0, x1, y1 float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
	}})
}

// testBoundaries puts QT6 in the south west and QHM in the north of a small box.
func testBoundaries() *geo.Set {
	return geo.NewSet([]geo.Boundary{
		{Code: "QT6", Name: "NHS Cornwall and the Isles of Scilly ICB", Polygons: []*geom.Polygon{square(-5.5, 50, -4, 51)}},
		{Code: "QHM", Name: "NHS Cumbria and North East ICB", Polygons: []*geom.Polygon{square(-3.5, 54, -1, 55.5)}},
	})
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	s, err := NewServer(&cfg, NewDataset(testRecords()), testBoundaries(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestDataset_Dates(t *testing.T) {
	d := NewDataset(testRecords())
	if diff := cmp.Diff([]string{"12/2023", "01/2024"}, d.Labels()); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	latest, ok := d.Latest()
	if !ok || !latest.Equal(month(2024, time.January)) {
		t.Errorf("Latest = %v, %v", latest, ok)
	}
}

func TestFilterDate(t *testing.T) {
	d := NewDataset(testRecords())

	got, err := d.FilterDate(month(2023, time.December))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ICBCode != "QT6" {
		t.Errorf("December = %+v", got)
	}

	latest, err := d.FilterDate(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if !latest[0].Date.Equal(month(2024, time.January)) {
		t.Errorf("zero date selected %v", latest[0].Date)
	}

	if _, err := d.FilterDate(month(2020, time.May)); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
	if _, err := NewDataset(nil).FilterDate(time.Time{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty dataset err = %v, want ErrNoData", err)
	}
}

func TestRegion(t *testing.T) {
	recs := testRecords()
	// reverse so Region has to sort
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	got := NewDataset(recs).Region("QT6")
	if len(got) != 2 || !got[0].Date.Before(got[1].Date) {
		t.Errorf("Region(QT6) = %+v", got)
	}
	if n := len(NewDataset(recs).Region("ZZZ")); n != 0 {
		t.Errorf("Region(ZZZ) has %d records", n)
	}
}

func TestMapRange(t *testing.T) {
	recs := testRecords()
	if got := MapRange(model.ColCapacityPerPopulation, recs); got != (Range{0, 60}) {
		t.Errorf("capacity rate range = %v, want [0 60]", got)
	}
	recs[0].CapacityPerPopulation = 72
	if got := MapRange(model.ColCapacityPerPopulation, recs); got != (Range{0, 72}) {
		t.Errorf("capacity rate range = %v, want [0 72]", got)
	}
	if got := MapRange(model.ColCapacity, recs); got != (Range{0, 520}) {
		t.Errorf("capacity range = %v, want [0 520]", got)
	}
	recs[3].Capacity = math.NaN()
	if got := MapRange(model.ColCapacity, recs); got != (Range{0, 500}) {
		t.Errorf("capacity range with NaN = %v, want [0 500]", got)
	}
}

func TestTimeseriesRange(t *testing.T) {
	recs := testRecords()
	if got := TimeseriesRange(model.ColCapacityPerPopulation, recs); got != (Range{0, 50}) {
		t.Errorf("range = %v, want [0 50]", got)
	}
	recs[0].CapacityPerPopulation = 55
	if got := TimeseriesRange(model.ColCapacityPerPopulation, recs); got != (Range{0, 56}) {
		t.Errorf("range = %v, want [0 56]", got)
	}
	if !ShowTarget(model.ColCapacityPerPopulation) || ShowTarget(model.ColOccupancy) {
		t.Error("target band only applies to capacity per population")
	}
}

func TestValueLabel(t *testing.T) {
	recs := testRecords()
	cases := []struct {
		spec, metric string
		rec          *model.Record
		want         string
	}{
		{".0%", model.ColOccupancy, &recs[0], "75%"},
		{".0%", model.ColOccupancy, &recs[2], "100%*"},
		{",.0f", model.ColCapacity, &recs[2], "90"},
		{",.0f", model.ColPopulation, &recs[1], "2,480,000"},
		{".1f", model.ColCapacityPerPopulation, &recs[2], "18.8"},
	}
	for _, c := range cases {
		if got := ValueLabel(c.spec, c.metric, c.rec); got != c.want {
			t.Errorf("ValueLabel(%q, %s) = %q, want %q", c.spec, c.metric, got, c.want)
		}
	}
}

func TestAxisTitle(t *testing.T) {
	cases := map[string]string{
		"Capacity (number of virtual ward 'beds')": "Capacity",
		"Occupancy (% of capacity)":                "Occupancy",
		"Patients":                                 "Patients",
	}
	for in, want := range cases {
		if got := AxisTitle(in); got != want {
			t.Errorf("AxisTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScale(t *testing.T) {
	s := Scale{Range: Range{0, 10}, Low: mustHex(t, "#FFFFFF"), High: mustHex(t, "#003087")}
	if got := CSS(s.Colour(0)); got != "#ffffff" {
		t.Errorf("Colour(0) = %s", got)
	}
	if got := CSS(s.Colour(10)); got != "#003087" {
		t.Errorf("Colour(10) = %s", got)
	}
	if got := CSS(s.Colour(25)); got != "#003087" {
		t.Errorf("Colour(25) should clamp, got %s", got)
	}
	if got := s.Colour(math.NaN()); got != missingColour {
		t.Errorf("Colour(NaN) = %v", got)
	}
}

func mustHex(t *testing.T, s string) color.RGBA {
	t.Helper()
	c, err := parseHex(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestProjection_RoundTrip(t *testing.T) {
	b := testBoundaries().Bounds()
	p := NewProjection(b, config.Coordinate{Lat: 52.8, Lon: -1.6}, MapWidth, MapHeight)
	x, y := p.Forward(-1.6, 52.8)
	if x != MapWidth/2 || y != MapHeight/2 {
		t.Errorf("centre maps to (%v, %v)", x, y)
	}
	for _, pt := range [][2]float64{{-5, 50.5}, {-2, 55}} {
		x, y := p.Forward(pt[0], pt[1])
		if x < 0 || x > MapWidth || y < 0 || y > MapHeight {
			t.Errorf("%v projects off-image to (%v, %v)", pt, x, y)
		}
		lon, lat := p.Inverse(x, y)
		if math.Abs(lon-pt[0]) > 1e-9 || math.Abs(lat-pt[1]) > 1e-9 {
			t.Errorf("round trip %v -> (%v, %v)", pt, lon, lat)
		}
	}
}

func TestParseSelection_Defaults(t *testing.T) {
	s := testServer(t)
	sel, err := s.ParseSelection(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	want := Selection{Metric: model.ColCapacityPerPopulation, DateIndex: 1, Region: "QT6"}
	if sel != want {
		t.Errorf("selection = %+v, want %+v", sel, want)
	}
}

func TestParseSelection_MapClick(t *testing.T) {
	s := testServer(t)
	x, y := s.proj.Forward(-2, 55)
	q := url.Values{}
	q.Set("region", "QT6")
	q.Set("map.x", fmt.Sprintf("%.0f", x))
	q.Set("map.y", fmt.Sprintf("%.0f", y))
	sel, err := s.ParseSelection(q)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Region != "QHM" {
		t.Errorf("clicked region = %q, want QHM", sel.Region)
	}

	// A click outside every boundary keeps the current region.
	q.Set("map.x", "0")
	q.Set("map.y", "0")
	if sel, _ := s.ParseSelection(q); sel.Region != "QT6" {
		t.Errorf("region after miss = %q, want QT6", sel.Region)
	}
}

func TestServer_Page(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/?metric=occupancy")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	page := body.String()
	for _, want := range []string{
		"Virtual Ward Capacity and Occupancy in England",
		"01/2024",
		"100%*",
		"NHS Cornwall and the Isles of Scilly ICB",
		"/map.png?date=1&amp;metric=occupancy&amp;region=QT6",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestServer_Images(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	for _, path := range []string{
		"/map.png?metric=capacity&date=0",
		"/timeseries.png?metric=capacity_per_population&region=QHM",
		"/timeseries.png?metric=occupancy&region=QT6",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d", path, resp.StatusCode)
			resp.Body.Close()
			continue
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type = %q", path, ct)
		}
		img, err := png.Decode(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Errorf("%s: decode png: %v", path, err)
			continue
		}
		if path[:4] == "/map" {
			if b := img.Bounds(); b.Dx() != MapWidth || b.Dy() != MapHeight {
				t.Errorf("map size = %dx%d", b.Dx(), b.Dy())
			}
		}
	}
}

func TestServer_Errors(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	cases := map[string]int{
		"/?metric=bogus":            http.StatusBadRequest,
		"/?date=7":                  http.StatusNotFound,
		"/timeseries.png?region=ZZ": http.StatusNotFound,
		"/healthz":                  http.StatusOK,
		"/nope":                     http.StatusNotFound,
	}
	for path, want := range cases {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, want)
		}
	}
}

func TestNewServer_EmptyDataset(t *testing.T) {
	cfg := config.Default()
	if _, err := NewServer(&cfg, NewDataset(nil), nil, zerolog.Nop()); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}
