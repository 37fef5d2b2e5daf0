package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/model"
	"github.com/wardstats/wardstats/internal/normalize"
	"github.com/wardstats/wardstats/internal/sheet"
	"github.com/wardstats/wardstats/internal/staging"
)

// Transform normalizes every workbook in the raw directory into a staging file.
//
// Workbooks are processed on a pool of min(GOMAXPROCS, files) workers. A failing
// workbook does not stop the others: each failure is returned as a
// *PipelineError joined into the error, alongside a summary of what succeeded.
func Transform(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*model.RunSummary, error) {
	start := time.Now()

	entries, err := os.ReadDir(cfg.RawDir())
	if err != nil {
		return nil, &PipelineError{Phase: "transform", Err: fmt.Errorf("list raw dir: %w", err)}
	}

	summary := &model.RunSummary{OutputPath: cfg.StagingDir()}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		summary.FilesSeen++
		if !normalize.IsProcessable(e.Name()) {
			log.Info().Str("file", e.Name()).Msg("skipping")
			summary.FilesSkipped++
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	if err := os.MkdirAll(cfg.StagingDir(), 0755); err != nil {
		return nil, &PipelineError{Phase: "transform", Err: fmt.Errorf("create staging dir: %w", err)}
	}

	var (
		mu       sync.Mutex
		failures []error
		rows     atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(runtime.GOMAXPROCS(0), len(files))))
	for _, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := ProcessFile(cfg, log, name)
			if err != nil {
				log.Error().Err(err).Str("file", name).Msg("transform failed")
				mu.Lock()
				failures = append(failures, &PipelineError{Phase: "transform", File: name, Err: err})
				mu.Unlock()
				return nil
			}
			rows.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &PipelineError{Phase: "transform", Err: err}
	}

	summary.FilesFailed = len(failures)
	summary.FilesProcessed = len(files) - len(failures)
	summary.RowsWritten = rows.Load()
	summary.DurationTotal = time.Since(start)

	log.Info().
		Int("files_seen", summary.FilesSeen).
		Int("files_processed", summary.FilesProcessed).
		Int("files_skipped", summary.FilesSkipped).
		Int("files_failed", summary.FilesFailed).
		Int64("rows_written", summary.RowsWritten).
		Dur("duration", summary.DurationTotal).
		Msg("transform complete")

	return summary, errors.Join(failures...)
}

// ProcessFile normalizes one raw workbook and writes its staging file. It
// returns the number of records written.
func ProcessFile(cfg *config.Config, log zerolog.Logger, rawFilename string) (int, error) {
	date, err := normalize.DeriveDate(rawFilename)
	if err != nil {
		return 0, err
	}
	grid, err := sheet.Read(filepath.Join(cfg.RawDir(), rawFilename))
	if err != nil {
		return 0, err
	}
	records, err := normalize.Normalize(rawFilename, grid, cfg.ColumnNames)
	if err != nil {
		return 0, err
	}

	out := filepath.Join(cfg.StagingDir(), normalize.StagingName(date))
	if err := staging.WriteFile(out, records); err != nil {
		return 0, err
	}
	sha, err := normalize.FileHash(out)
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("file", rawFilename).
		Str("staging", filepath.Base(out)).
		Int("rows", len(records)).
		Str("sha256", sha).
		Msg("processed")
	return len(records), nil
}
