package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/dashboard"
	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/geo"
	"github.com/wardstats/wardstats/internal/logging"
	"github.com/wardstats/wardstats/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over the master table",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()
	log = logging.Component(log, "dashboard")

	records, src, err := pipeline.LoadMaster(&cfg)
	if err != nil {
		log.Error().Err(err).Msg("read master table failed (run transform and combine first)")
		os.Exit(exitcode.ServeError)
	}
	log.Info().Str("file", src).Int("rows", len(records)).Msg("master table loaded")

	boundaries, err := geo.Load(cfg.BoundaryPath(), cfg.LookupPath(), cfg.Boundaries, log)
	if err != nil {
		log.Warn().Err(err).Msg("boundaries unavailable, map will be blank")
		boundaries = nil
	}

	srv, err := dashboard.NewServer(&cfg, dashboard.NewDataset(records), boundaries, log)
	if err != nil {
		log.Error().Err(err).Msg("dashboard setup failed")
		os.Exit(exitcode.ServeError)
	}
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("dashboard stopped")
		os.Exit(exitcode.ServeError)
	}
	return nil
}
