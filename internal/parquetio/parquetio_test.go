package parquetio

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/parquet-go/parquet-go"

	"github.com/wardstats/wardstats/internal/model"
)

func TestWriteFileReadFile(t *testing.T) {
	nov := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	want := []model.Record{
		{Date: nov, ICBCode: "QE1", Capacity: 10, CapacityPerPopulation: 1.5, Population: 1000, Patients: 9, Occupancy: 0.9},
		{Date: dec, ICBCode: "QE1", Capacity: 12, CapacityPerPopulation: math.NaN(), Population: 1000, Patients: 14, Occupancy: 1, Suppressed: true},
	}

	path := filepath.Join(t.TempDir(), "master.parquet")
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestValidateSchema_MissingColumns(t *testing.T) {
	type partial struct {
		Date    string `parquet:"date"`
		ICBCode string `parquet:"icb_code"`
	}
	if err := ValidateSchema(parquet.SchemaOf(partial{})); err == nil {
		t.Fatal("expected error for schema without metric columns")
	}
	if err := ValidateSchema(parquet.SchemaOf(model.MasterRow{})); err != nil {
		t.Fatalf("master schema rejected: %v", err)
	}
}
