package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/dashboard"
	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/format"
	"github.com/wardstats/wardstats/internal/geo"
	"github.com/wardstats/wardstats/internal/model"
	"github.com/wardstats/wardstats/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the most recent month of the master table",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	log, _, cancel := setup()
	defer cancel()

	records, _, err := pipeline.LoadMaster(&cfg)
	if err != nil {
		log.Error().Err(err).Msg("read master table failed")
		os.Exit(exitcode.CombineError)
	}
	data := dashboard.NewDataset(records)
	latest, err := data.FilterDate(time.Time{})
	if err != nil {
		log.Error().Err(err).Msg("no data")
		os.Exit(exitcode.CombineError)
	}

	names := geo.NewSet(nil)
	if set, err := geo.Load(cfg.BoundaryPath(), cfg.LookupPath(), cfg.Boundaries, log); err == nil {
		names = set
	} else {
		log.Debug().Err(err).Msg("boundaries unavailable, showing codes only")
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Virtual wards, " + latest[0].Date.Format(dashboard.DateLabelLayout))
	t.AppendHeader(table.Row{"ICB", "Name", "Capacity", "Per 100k", "Patients", "Occupancy"})

	var capacity, patients float64
	for i := range latest {
		rec := &latest[i]
		t.AppendRow(table.Row{
			rec.ICBCode,
			names.Name(rec.ICBCode),
			dashboard.ValueLabel(cfg.Formatters[model.ColCapacity], model.ColCapacity, rec),
			dashboard.ValueLabel(cfg.Formatters[model.ColCapacityPerPopulation], model.ColCapacityPerPopulation, rec),
			dashboard.ValueLabel(cfg.Formatters[model.ColPatients], model.ColPatients, rec),
			dashboard.ValueLabel(cfg.Formatters[model.ColOccupancy], model.ColOccupancy, rec),
		})
		if !math.IsNaN(rec.Capacity) {
			capacity += rec.Capacity
		}
		if !math.IsNaN(rec.Patients) {
			patients += rec.Patients
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d ICBs", len(latest)),
		format.Value(cfg.Formatters[model.ColCapacity], capacity), "",
		format.Value(cfg.Formatters[model.ColPatients], patients), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
