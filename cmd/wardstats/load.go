package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/db"
	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/logging"
	"github.com/wardstats/wardstats/internal/model"
	"github.com/wardstats/wardstats/internal/normalize"
	"github.com/wardstats/wardstats/internal/pipeline"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the Postgres copy of the master table",
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()
	log = logging.Component(log, "load")
	requireDSN(log)

	records, src, err := pipeline.LoadMaster(&cfg)
	if err != nil {
		log.Error().Err(err).Msg("read master table failed")
		os.Exit(exitcode.LoadError)
	}
	sha, err := normalize.FileHash(src)
	if err != nil {
		log.Error().Err(err).Msg("hash master table failed")
		os.Exit(exitcode.LoadError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := db.Load(ctx, pool, log, records, db.Source{Path: src, SHA256: sha})
	if err != nil {
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.LoadError)
	}
	counts, err := db.MonthCounts(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("verify load failed")
		os.Exit(exitcode.LoadError)
	}

	fmt.Printf("Load complete: %d rows from %s in %d months, batch %s (%.1fs)\n",
		summary.RowsLoaded, summary.SourcePath, len(counts), summary.LoadBatchID, summary.DurationTotal.Seconds())
	for _, mc := range counts {
		log.Debug().Str("month", mc.Date.Format(model.DateLayout)).Int64("rows", mc.Count).Msg("loaded month")
	}
	return nil
}
