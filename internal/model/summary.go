package model

import "time"

// RunSummary captures metrics from a single transform or combine run.
type RunSummary struct {
	FilesSeen      int
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	RowsWritten    int64
	DuplicateKeys  int
	OutputPath     string
	DurationTotal  time.Duration
}

// LoadSummary captures metrics from a Postgres load run.
type LoadSummary struct {
	LoadBatchID   string
	SourcePath    string
	RowsRead      int64
	RowsLoaded    int64
	DurationCopy  time.Duration
	DurationTotal time.Duration
}
