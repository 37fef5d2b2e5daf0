package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/db"
	"github.com/wardstats/wardstats/internal/exitcode"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func requireDSN(log zerolog.Logger) {
	if cfg.DSN == "" {
		log.Error().Msg("--dsn or " + dsnEnv + " is required")
		os.Exit(exitcode.UsageError)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()
	requireDSN(log)

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.LoadError)
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}
