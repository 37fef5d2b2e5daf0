package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wardstats/wardstats/internal/model"
	embedsql "github.com/wardstats/wardstats/internal/sql"
)

const copyBufferSize = 256

// StatsTable is the table the master table is loaded into.
var StatsTable = pgx.Identifier{"wardstats", "virtual_ward_stats"}

// Source describes where the loaded records came from.
type Source struct {
	Path   string
	SHA256 string
}

// Load replaces the contents of the stats table with records in one
// transaction: truncate, COPY, register the batch. A duplicated
// (report_date, icb_code) pair violates the primary key and rolls back the
// whole load, leaving the previous contents in place.
func Load(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, records []model.Record, src Source) (*model.LoadSummary, error) {
	start := time.Now()
	batchID := uuid.New()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, embedsql.TruncateStats); err != nil {
		return nil, fmt.Errorf("truncate: %w", err)
	}

	ch := make(chan *model.Record, copyBufferSize)
	copyCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(ch)
		for i := range records {
			select {
			case ch <- &records[i]:
			case <-copyCtx.Done():
				return
			}
		}
	}()

	copyStart := time.Now()
	loaded, err := tx.CopyFrom(ctx, StatsTable, model.CopyColumns(), NewChannelSource(ch, batchID))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("copy: %w", err)
	}
	copyDur := time.Since(copyStart)

	if _, err := tx.Exec(ctx, embedsql.RegisterBatch, batchID, src.Path, src.SHA256, loaded); err != nil {
		return nil, fmt.Errorf("register batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if _, err := pool.Exec(ctx, embedsql.AnalyzeStats); err != nil {
		log.Warn().Err(err).Msg("analyze failed (non-fatal)")
	}

	summary := &model.LoadSummary{
		LoadBatchID:   batchID.String(),
		SourcePath:    src.Path,
		RowsRead:      int64(len(records)),
		RowsLoaded:    loaded,
		DurationCopy:  copyDur,
		DurationTotal: time.Since(start),
	}
	log.Info().
		Str("load_batch_id", summary.LoadBatchID).
		Int64("rows_loaded", summary.RowsLoaded).
		Str("duration", summary.DurationTotal.String()).
		Float64("rows_per_sec", float64(loaded)/copyDur.Seconds()).
		Msg("load complete")
	return summary, nil
}

// MonthCount is the number of loaded rows for one reporting month.
type MonthCount struct {
	Date  time.Time
	Count int64
}

// MonthCounts returns the row count per reporting month in date order.
func MonthCounts(ctx context.Context, pool *pgxpool.Pool) ([]MonthCount, error) {
	rows, err := pool.Query(ctx, embedsql.MonthCounts)
	if err != nil {
		return nil, fmt.Errorf("month counts: %w", err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthCount, error) {
		var mc MonthCount
		err := row.Scan(&mc.Date, &mc.Count)
		return mc, err
	})
	if err != nil {
		return nil, fmt.Errorf("month counts: %w", err)
	}
	return counts, nil
}
