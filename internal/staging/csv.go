// Package staging reads and writes record tables as CSV. Staging files and the
// master table share the same layout.
package staging

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/wardstats/wardstats/internal/model"
	"github.com/wardstats/wardstats/internal/normalize"
)

// ErrHeader is returned when a CSV file does not start with model.RecordColumns.
var ErrHeader = errors.New("unexpected csv header")

// Write encodes records as CSV with a header row.
func Write(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.RecordColumns()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(encode(&records[i])); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, replacing it atomically. Intermediate
// directories are created.
func WriteFile(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("csv: rename to %s: %w", path, err)
	}
	return nil
}

// Read decodes a CSV record table.
func Read(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(model.RecordColumns())

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	if !slices.Equal(header, model.RecordColumns()) {
		return nil, fmt.Errorf("%w: %v", ErrHeader, header)
	}

	var records []model.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read line %d: %w", line, err)
		}
		rec, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		records = append(records, rec)
	}
}

// ReadFile decodes the CSV record table at path.
func ReadFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open: %w", err)
	}
	defer f.Close()
	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func encode(r *model.Record) []string {
	return []string{
		r.Date.Format(model.DateLayout),
		r.ICBCode,
		normalize.FormatNumber(r.Capacity),
		normalize.FormatNumber(r.CapacityPerPopulation),
		normalize.FormatNumber(r.Population),
		normalize.FormatNumber(r.Patients),
		normalize.FormatNumber(r.Occupancy),
		strconv.FormatBool(r.Suppressed),
	}
}

func decode(row []string) (model.Record, error) {
	date, err := time.Parse(model.DateLayout, row[0])
	if err != nil {
		return model.Record{}, fmt.Errorf("parse date: %w", err)
	}
	suppressed, err := strconv.ParseBool(row[7])
	if err != nil {
		return model.Record{}, fmt.Errorf("parse suppressed: %w", err)
	}
	return model.Record{
		Date:                  date,
		ICBCode:               row[1],
		Capacity:              normalize.ParseNumber(row[2]),
		CapacityPerPopulation: normalize.ParseNumber(row[3]),
		Population:            normalize.ParseNumber(row[4]),
		Patients:              normalize.ParseNumber(row[5]),
		Occupancy:             normalize.ParseNumber(row[6]),
		Suppressed:            suppressed,
	}, nil
}
