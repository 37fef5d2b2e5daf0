package staging

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wardstats/wardstats/internal/model"
)

func sampleRecords() []model.Record {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []model.Record{
		{Date: jan, ICBCode: "QMJ", Capacity: 120, CapacityPerPopulation: 10.2, Population: 1176000, Patients: 130, Occupancy: 1, Suppressed: true},
		{Date: jan, ICBCode: "QHM", Capacity: 500, CapacityPerPopulation: 21.3, Population: 2345678, Patients: 400, Occupancy: 0.8},
		{Date: jan, ICBCode: "QOX", Capacity: math.NaN(), CapacityPerPopulation: math.NaN(), Population: 900000, Patients: 0, Occupancy: math.NaN()},
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords()[:2]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := strings.Join([]string{
		"date,icb_code,capacity,capacity_per_population,population,patients,occupancy,suppressed",
		"2024-01-01,QMJ,120,10.2,1176000,130,1,true",
		"2024-01-01,QHM,500,21.3,2345678,400,0.8,false",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("csv mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staging", "2024_01.csv")
	if err := WriteFile(path, sampleRecords()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(sampleRecords(), got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestWriteFile_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024_01.csv")
	if err := WriteFile(path, sampleRecords()); err != nil {
		t.Fatalf("first WriteFile: %v", err)
	}
	first, _ := os.ReadFile(path)
	if err := WriteFile(path, sampleRecords()); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Error("re-writing the same records changed the file")
	}
}

func TestRead_AcceptsPandasBooleans(t *testing.T) {
	in := "date,icb_code,capacity,capacity_per_population,population,patients,occupancy,suppressed\n" +
		"2023-11-01,QE1,10,1.5,1000,9,0.9,False\n" +
		"2023-11-01,QF7,20,2.5,2000,25,1.0,True\n"
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 || got[0].Suppressed || !got[1].Suppressed {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestRead_BadHeader(t *testing.T) {
	_, err := Read(strings.NewReader("a,b,c,d,e,f,g,h\n"))
	if !errors.Is(err, ErrHeader) {
		t.Fatalf("expected ErrHeader, got %v", err)
	}
	_, err = Read(strings.NewReader(""))
	if !errors.Is(err, ErrHeader) {
		t.Fatalf("expected ErrHeader for empty input, got %v", err)
	}
}
