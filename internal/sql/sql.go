// Package sql embeds the schema migrations and the queries the loader runs.
package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/truncate_stats.sql
var TruncateStats string

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/month_counts.sql
var MonthCounts string

//go:embed queries/analyze_stats.sql
var AnalyzeStats string
