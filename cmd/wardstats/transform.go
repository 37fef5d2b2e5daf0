package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardstats/wardstats/internal/exitcode"
	"github.com/wardstats/wardstats/internal/logging"
	"github.com/wardstats/wardstats/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Normalize every raw workbook into a staging CSV",
	RunE:  runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	log, ctx, cancel := setup()
	defer cancel()

	summary, err := pipeline.Transform(ctx, &cfg, logging.Component(log, "transform"))
	if err != nil {
		failures := pipeline.Failures(err)
		for _, f := range failures {
			log.Error().Err(f.Err).Str("phase", f.Phase).Str("file", f.File).Msg("workbook failed")
		}
		if summary == nil {
			log.Error().Err(err).Msg("transform failed")
			os.Exit(exitcode.TransformError)
		}
		if summary.FilesProcessed > 0 {
			fmt.Printf("Transform partially complete: %d processed, %d failed, %d skipped\n",
				summary.FilesProcessed, summary.FilesFailed, summary.FilesSkipped)
			os.Exit(exitcode.PartialSuccess)
		}
		os.Exit(exitcode.TransformError)
	}

	fmt.Printf("Transform complete: %d processed, %d skipped, %d rows (%.1fs)\n",
		summary.FilesProcessed, summary.FilesSkipped, summary.RowsWritten, summary.DurationTotal.Seconds())
	return nil
}
