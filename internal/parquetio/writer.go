// Package parquetio stores the master table as a parquet file alongside the CSV.
package parquetio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/wardstats/wardstats/internal/model"
)

// WriteFile writes records to a new parquet file at path, in order.
func WriteFile(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer f.Close()

	rows := make([]model.MasterRow, len(records))
	for i := range records {
		rows[i] = model.ToMasterRow(&records[i])
	}

	w := parquet.NewGenericWriter[model.MasterRow](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}
