package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/logging"
)

const (
	defaultConfigPath = "config.yml"
	dsnEnv            = "WARDSTATS_DB_URL"
)

var (
	cfg        = config.Default()
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "wardstats",
	Short: "NHS England virtual ward statistics: fetch, transform, combine and serve",
	Long: "Downloads the monthly Virtual Ward Capacity and Occupancy workbooks, normalizes them " +
		"into a master table and serves an interactive dashboard over it.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfigPath, "Path to config.yml")
	pf.StringVar(&dataDir, "data-dir", "", "Override data_dir from the config file")
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string (or set "+dsnEnv+")")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

// loadConfig reads .env and config.yml and applies flag overrides. A missing
// config.yml is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.LoadFromFile(configPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			log.Error().Err(err).Str("config", configPath).Msg("config load failed")
			os.Exit(exitcode.ConfigError)
		}
		log.Debug().Str("config", configPath).Msg("no config file, using defaults")
		if err := cfg.Validate(); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.ConfigError)
		}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv(dsnEnv)
	}
	return nil
}

// setup returns the process logger and a context cancelled on SIGINT/SIGTERM.
func setup() (zerolog.Logger, context.Context, context.CancelFunc) {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return log, ctx, cancel
}
