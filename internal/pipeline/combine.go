package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardstats/wardstats/internal/config"
	"github.com/wardstats/wardstats/internal/model"
	"github.com/wardstats/wardstats/internal/parquetio"
	"github.com/wardstats/wardstats/internal/staging"
)

// StagingFiles lists the staging CSV files in dir, sorted by name. Names are
// YYYY_MM.csv, so the order is chronological.
func StagingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list staging dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Concat reads the staging files in order and concatenates their records.
func Concat(dir string, files []string) ([]model.Record, error) {
	var all []model.Record
	for _, name := range files {
		records, err := staging.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, &PipelineError{Phase: "combine", File: name, Err: err}
		}
		all = append(all, records...)
	}
	return all, nil
}

// DuplicateKeys counts records whose (date, ICB) pair already appeared earlier.
func DuplicateKeys(records []model.Record) int {
	seen := make(map[model.Key]struct{}, len(records))
	dups := 0
	for i := range records {
		k := records[i].Key()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// Combine concatenates every staging file into the master table and writes it
// as CSV, plus parquet when configured. Duplicate (date, ICB) pairs are kept
// and reported in the summary and the log.
func Combine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*model.RunSummary, error) {
	start := time.Now()

	files, err := StagingFiles(cfg.StagingDir())
	if err != nil {
		return nil, &PipelineError{Phase: "combine", Err: err}
	}
	records, err := Concat(cfg.StagingDir(), files)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &model.RunSummary{
		FilesSeen:      len(files),
		FilesProcessed: len(files),
		RowsWritten:    int64(len(records)),
		DuplicateKeys:  DuplicateKeys(records),
		OutputPath:     cfg.MasterPath(),
	}
	if summary.DuplicateKeys > 0 {
		log.Warn().
			Int("duplicates", summary.DuplicateKeys).
			Msg("master table has repeated (date, icb_code) pairs; check staging for a month processed twice")
	}

	if err := staging.WriteFile(cfg.MasterPath(), records); err != nil {
		return nil, &PipelineError{Phase: "combine", File: cfg.MasterPath(), Err: err}
	}
	if p := cfg.MasterParquetPath(); p != "" {
		if err := parquetio.WriteFile(p, records); err != nil {
			return nil, &PipelineError{Phase: "combine", File: p, Err: err}
		}
		log.Info().Str("file", p).Msg("written parquet master table")
	}

	summary.DurationTotal = time.Since(start)
	log.Info().
		Int("files", len(files)).
		Int64("rows", summary.RowsWritten).
		Str("file", cfg.MasterPath()).
		Dur("duration", summary.DurationTotal).
		Msg("written combined file")
	return summary, nil
}

// LoadMaster reads the master table, preferring the parquet copy when it exists.
func LoadMaster(cfg *config.Config) ([]model.Record, string, error) {
	if p := cfg.MasterParquetPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			records, err := parquetio.ReadFile(p)
			return records, p, err
		}
	}
	records, err := staging.ReadFile(cfg.MasterPath())
	return records, cfg.MasterPath(), err
}
