package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/fetch"
	"github.com/wardstats/wardstats/internal/logging"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download published workbooks into <data_dir>/raw",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&cfg.Overwrite, "overwrite", false, "Download workbooks that already exist locally")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()

	d := fetch.NewDownloader(&cfg, logging.Component(log, "fetch"))
	res, err := d.Download(ctx, cfg.Overwrite)
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		os.Exit(exitcode.FetchError)
	}

	fmt.Printf("Fetch complete: %d links, %d downloaded, %d skipped\n", res.Links, res.Downloaded, res.Skipped)
	return nil
}
