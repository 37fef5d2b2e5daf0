// mkfixture writes synthetic monthly release workbooks, plus matching boundary
// and lookup files, so the pipeline and dashboard can run without network access.
// Usage: go run ./cmd/mkfixture --data-dir data --months 6 --end 2024-02 --suppress QT6
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/fixture"
)

func main() {
	dataDir := flag.String("data-dir", "data", "data directory (raw/ and static/ are written below it)")
	months := flag.Int("months", 6, "number of months to generate")
	end := flag.String("end", "2024-02", "last month to generate, YYYY-MM")
	suppress := flag.String("suppress", "QT6", "ICB whose occupancy is suppressed in the last month")
	flag.Parse()

	last, err := time.Parse("2006-01", *end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse --end: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.DataDir = *dataDir

	for i := *months - 1; i >= 0; i-- {
		date := last.AddDate(0, -i, 0)
		icbs := grow(fixture.ICBs, *months-1-i)
		if i == 0 {
			for j := range icbs {
				icbs[j].Suppressed = icbs[j].Code == *suppress
			}
		}
		path, err := fixture.WriteMonth(cfg.RawDir(), date, icbs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", date.Format("2006-01"), err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if err := writeStatic(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "write static files: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s and %s\n", cfg.BoundaryPath(), cfg.LookupPath())
}

// grow scales capacity and patients by 5% per step so the series trend upwards.
func grow(icbs []fixture.ICB, step int) []fixture.ICB {
	out := append([]fixture.ICB(nil), icbs...)
	f := 1 + 0.05*float64(step)
	for i := range out {
		out[i].Capacity = float64(int(out[i].Capacity * f))
		out[i].Patients = float64(int(out[i].Patients * f))
	}
	return out
}

// writeStatic lays the fixture ICBs out as a grid of squares over England and
// writes the boundary GeoJSON and the code lookup CSV.
func writeStatic(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.StaticDir(), 0755); err != nil {
		return err
	}
	bc := cfg.Boundaries
	fc := geojson.FeatureCollection{}
	lookup := fmt.Sprintf("%s,%s,%s\n", bc.LookupLong, bc.LookupShort, bc.LookupName)
	for i, icb := range fixture.ICBs {
		x0 := -5.5 + float64(i%2)*3.5
		y0 := 50.0 + float64(i/2)*2.5
		poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
			{x0, y0}, {x0 + 3, y0}, {x0 + 3, y0 + 2}, {x0, y0 + 2}, {x0, y0},
		}})
		long := fmt.Sprintf("E540000%02d", i+1)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   poly,
			Properties: map[string]interface{}{bc.FeatureKey: long},
		})
		lookup += fmt.Sprintf("%s,%s,%q\n", long, icb.Code, icb.Name)
	}
	data, err := json.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.BoundaryPath(), data, 0644); err != nil {
		return err
	}
	return os.WriteFile(cfg.LookupPath(), []byte(lookup), 0644)
}
