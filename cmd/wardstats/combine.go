package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/logging"
	"github.com/wardstats/wardstats/internal/pipeline"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Concatenate staging files into the master table",
	RunE:  runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()

	summary, err := pipeline.Combine(ctx, &cfg, logging.Component(log, "combine"))
	if err != nil {
		log.Error().Err(err).Msg("combine failed")
		os.Exit(exitcode.CombineError)
	}

	fmt.Printf("Combine complete: %d files, %d rows -> %s\n", summary.FilesProcessed, summary.RowsWritten, summary.OutputPath)
	if summary.DuplicateKeys > 0 {
		fmt.Printf("Warning: %d duplicated (date, icb_code) rows\n", summary.DuplicateKeys)
	}
	return nil
}
