package normalize

import (
	"errors"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/wardstats/wardstats/internal/model"
)

var (
	// ErrHeaderNotFound means no data cell was found in the last column, so the
	// sheet layout no longer matches what the publisher used to produce.
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrMissingColumn means a required column is absent after renaming.
	ErrMissingColumn = errors.New("missing column")
)

// Table is a labelled grid of cell text. An empty string is a missing cell.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// HeaderRow locates the header row of a raw sheet grid. It assumes the last
// column is numeric in the data region: the header is the row just above the
// first last-column cell that starts with a digit.
//
// This is the only place that encodes the publisher's sheet layout.
func HeaderRow(grid [][]string) (int, error) {
	width := gridWidth(grid)
	if width == 0 {
		return 0, fmt.Errorf("%w: empty sheet", ErrHeaderNotFound)
	}
	last := width - 1
	for r, row := range grid {
		if last >= len(row) || !startsWithDigit(row[last]) {
			continue
		}
		if r == 0 {
			return 0, fmt.Errorf("%w: numeric cell in first row", ErrHeaderNotFound)
		}
		return r - 1, nil
	}
	return 0, fmt.Errorf("%w: no numeric cell in column %d", ErrHeaderNotFound, last+1)
}

// PromoteHeader uses grid[header] as column labels and the rows after it as data.
// Rows above the header are title and metadata rows and are discarded.
func PromoteHeader(grid [][]string, header int) Table {
	width := gridWidth(grid)
	t := Table{Columns: padRow(grid[header], width)}
	for _, row := range grid[header+1:] {
		t.Rows = append(t.Rows, padRow(row, width))
	}
	return t
}

// DropEmptyColumns removes columns whose data cells are all empty.
func DropEmptyColumns(t Table) Table {
	var keep []int
	for c := range t.Columns {
		for _, row := range t.Rows {
			if row[c] != "" {
				keep = append(keep, c)
				break
			}
		}
	}
	return project(t, keep)
}

// CleanLabels strips footnotes from every label and applies the rename table.
func CleanLabels(t Table, renames map[string]string) Table {
	cols := make([]string, len(t.Columns))
	for i, label := range t.Columns {
		cols[i] = RenameLabel(CleanLabel(label), renames)
	}
	return Table{Columns: cols, Rows: t.Rows}
}

// DropColumns removes the named columns. Every name must be present.
func DropColumns(t Table, names ...string) (Table, error) {
	for _, name := range names {
		if t.Index(name) < 0 {
			return Table{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	var keep []int
	for i, col := range t.Columns {
		if !slices.Contains(names, col) {
			keep = append(keep, i)
		}
	}
	return project(t, keep), nil
}

// ValidRegionRows keeps rows whose ICB code is longer than two characters,
// dropping the national aggregate row.
func ValidRegionRows(t Table) (Table, error) {
	c := t.Index(model.ColICBCode)
	if c < 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrMissingColumn, model.ColICBCode)
	}
	out := Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if ValidRegionCode(row[c]) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func project(t Table, keep []int) Table {
	out := Table{Columns: make([]string, len(keep))}
	for i, c := range keep {
		out.Columns[i] = t.Columns[c]
	}
	for _, row := range t.Rows {
		nr := make([]string, len(keep))
		for i, c := range keep {
			nr[i] = row[c]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

func gridWidth(grid [][]string) int {
	w := 0
	for _, row := range grid {
		w = max(w, len(row))
	}
	return w
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}
