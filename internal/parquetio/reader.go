package parquetio

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/wardstats/wardstats/internal/model"
)

const readBatchSize = 256

// Reader wraps a parquet GenericReader for streaming MasterRow records.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[model.MasterRow]
}

// Open opens a master parquet file and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.MasterRow](pf)
	return &Reader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the parquet file.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows []model.MasterRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// Schema returns the parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadFile validates and reads every record of the master parquet file at path.
func ReadFile(path string) ([]model.Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema()); err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, r.NumRows())
	buf := make([]model.MasterRow, readBatchSize)
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			rec, err := buf[i].Record()
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
		if readErr == io.EOF {
			return records, nil
		}
		if readErr != nil {
			return nil, readErr
		}
	}
}
