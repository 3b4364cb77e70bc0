package dataset

import (
	"strconv"
	"strings"
)

// Frame is a small row-oriented table. Cells are strings as ingested;
// typed views are derived on demand. An empty cell is a null.
type Frame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NumRows returns the row count.
func (f Frame) NumRows() int { return len(f.Rows) }

// NumColumns returns the column count.
func (f Frame) NumColumns() int { return len(f.Columns) }

// ColumnIndex returns the position of the named column.
func (f Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns the named column's cells, or nil if absent.
func (f Frame) Column(name string) []string {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return nil
	}
	cells := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		cells = append(cells, row[idx])
	}
	return cells
}

// FloatColumn parses the named column as floats, skipping null and
// unparsable cells. The second return is the positions of the parsed
// values in the original rows.
func (f Frame) FloatColumn(name string) ([]float64, []int) {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return nil, nil
	}
	values := make([]float64, 0, len(f.Rows))
	positions := make([]int, 0, len(f.Rows))
	for i, row := range f.Rows {
		v, err := ParseFloat(row[idx])
		if err != nil {
			continue
		}
		values = append(values, v)
		positions = append(positions, i)
	}
	return values, positions
}

// IsNull reports whether a cell is a null marker.
func IsNull(cell string) bool {
	switch strings.TrimSpace(strings.ToLower(cell)) {
	case "", "null", "none", "nan", "n/a":
		return true
	}
	return false
}

// ParseFloat parses a cell as a float, rejecting nulls.
func ParseFloat(cell string) (float64, error) {
	if IsNull(cell) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}

// NullCount returns the number of null cells in the named column.
func (f Frame) NullCount(name string) int {
	n := 0
	for _, cell := range f.Column(name) {
		if IsNull(cell) {
			n++
		}
	}
	return n
}

// Head returns a copy of the first n rows.
func (f Frame) Head(n int) Frame {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = append([]string(nil), f.Rows[i]...)
	}
	return Frame{Columns: append([]string(nil), f.Columns...), Rows: rows}
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	return f.Head(len(f.Rows))
}

// Select returns a copy with only the rows whose index passes keep.
func (f Frame) Select(keep func(row int) bool) Frame {
	out := Frame{Columns: append([]string(nil), f.Columns...)}
	for i, row := range f.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// WithoutColumns returns a copy with the named columns removed. Unknown
// names are ignored.
func (f Frame) WithoutColumns(names []string) Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]int, 0, len(f.Columns))
	out := Frame{}
	for i, c := range f.Columns {
		if !drop[c] {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range f.Rows {
		newRow := make([]string, 0, len(keep))
		for _, i := range keep {
			newRow = append(newRow, row[i])
		}
		out.Rows = append(out.Rows, newRow)
	}
	return out
}

// DuplicateRows returns the indexes of rows that repeat an earlier row.
func (f Frame) DuplicateRows() []int {
	seen := make(map[string]bool, len(f.Rows))
	var dups []int
	for i, row := range f.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			dups = append(dups, i)
			continue
		}
		seen[key] = true
	}
	return dups
}

// SetCell overwrites one cell in place.
func (f *Frame) SetCell(row int, column string, value string) {
	idx, ok := f.ColumnIndex(column)
	if !ok || row < 0 || row >= len(f.Rows) {
		return
	}
	f.Rows[row][idx] = value
}
