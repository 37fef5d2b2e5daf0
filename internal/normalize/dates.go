package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrFilename is returned when a raw filename does not start with <year>_<month>_.
var ErrFilename = errors.New("raw filename does not encode year and month")

// DeriveDate returns the first day of the reporting month encoded in a raw
// filename such as "2024_02_Monthly_Virtual_Ward.xlsx".
//
// The <year>_<month>_ prefix is written by the fetcher; it is the only place
// that assumes this naming convention.
func DeriveDate(rawFilename string) (time.Time, error) {
	parts := strings.SplitN(rawFilename, "_", 3)
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrFilename, rawFilename)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: year: %v", ErrFilename, rawFilename, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q: month %q", ErrFilename, rawFilename, parts[1])
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// StagingName returns the staging filename for a reporting month, e.g. "2024_02.csv".
func StagingName(date time.Time) string {
	return date.Format("2006_01") + ".csv"
}

// IsProcessable reports whether a file in the raw directory should be normalized.
// Non-workbooks and office lock files ("~$...") are skipped.
func IsProcessable(filename string) bool {
	return strings.HasSuffix(filename, WorkbookExt) && !strings.HasPrefix(filename, lockPrefix)
}

const (
	// WorkbookExt is the extension of published data files.
	WorkbookExt = ".xlsx"
	lockPrefix  = "~"
)
