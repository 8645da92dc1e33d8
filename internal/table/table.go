// Package table implements a small in-memory column table: an ordered set of
// named columns, each a sequence of nullable cells. Transformations return a
// new table and never mutate their receiver, so independent pipeline runs can
// share tables freely.
package table

import (
	"fmt"
	"time"
)

// Kind identifies the concrete type stored in a Cell.
type Kind uint8

const (
	Absent Kind = iota
	String
	Float
	Date      // calendar date, midnight UTC
	TimeOfDay // time-of-day on the zero reference date
	Timestamp // combined date and time, UTC
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case String:
		return "string"
	case Float:
		return "float"
	case Date:
		return "date"
	case TimeOfDay:
		return "time"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is one nullable table value. The zero value is absent.
type Cell struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
}

// AbsentCell returns the missing-value cell.
func AbsentCell() Cell { return Cell{} }

// StringCell wraps a raw textual value.
func StringCell(s string) Cell { return Cell{kind: String, str: s} }

// FloatCell wraps a numeric value.
func FloatCell(f float64) Cell { return Cell{kind: Float, num: f} }

// DateCell wraps a calendar date. The time-of-day portion of t is discarded.
func DateCell(t time.Time) Cell {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Cell{kind: Date, tm: d}
}

// TimeCell wraps a time-of-day. The date portion of t is discarded.
func TimeCell(t time.Time) Cell {
	tod := time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return Cell{kind: TimeOfDay, tm: tod}
}

// TimestampCell wraps a combined date and time in UTC.
func TimestampCell(t time.Time) Cell { return Cell{kind: Timestamp, tm: t.UTC()} }

// Kind reports the concrete type of the cell.
func (c Cell) Kind() Kind { return c.kind }

// IsAbsent reports whether the cell holds no value.
func (c Cell) IsAbsent() bool { return c.kind == Absent }

// Str returns the textual value and whether the cell holds one.
func (c Cell) Str() (string, bool) { return c.str, c.kind == String }

// Float returns the numeric value and whether the cell holds one.
func (c Cell) Float() (float64, bool) { return c.num, c.kind == Float }

// Time returns the temporal value and whether the cell holds one
// (Date, TimeOfDay, or Timestamp kinds).
func (c Cell) Time() (time.Time, bool) {
	switch c.kind {
	case Date, TimeOfDay, Timestamp:
		return c.tm, true
	default:
		return time.Time{}, false
	}
}

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case Absent:
		return true
	case String:
		return c.str == other.str
	case Float:
		return c.num == other.num
	default:
		return c.tm.Equal(other.tm)
	}
}

// Column is a named sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols  []Column
	index map[string]int
}

// New builds a table from columns. Column order is preserved. It returns an
// error when column names repeat or lengths differ.
func New(cols ...Column) (Table, error) {
	index := make(map[string]int, len(cols))
	rows := -1
	for i, col := range cols {
		if _, dup := index[col.Name]; dup {
			return Table{}, fmt.Errorf("duplicate column %q", col.Name)
		}
		if rows >= 0 && len(col.Cells) != rows {
			return Table{}, fmt.Errorf("column %q has %d rows, want %d", col.Name, len(col.Cells), rows)
		}
		rows = len(col.Cells)
		index[col.Name] = i
	}
	return Table{cols: cols, index: index}, nil
}

// NumRows returns the row count.
func (t Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// NumColumns returns the column count.
func (t Table) NumColumns() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column's cells. The returned slice must not be
// mutated. ok is false when the column does not exist.
func (t Table) Column(name string) (cells []Cell, ok bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i].Cells, true
}

// Cell returns the value at (column, row), or an absent cell when the column
// does not exist or the row is out of range.
func (t Table) Cell(name string, row int) Cell {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= len(t.cols[i].Cells) {
		return AbsentCell()
	}
	return t.cols[i].Cells[row]
}

// clone deep-copies the table's column and cell storage.
func (t Table) clone() Table {
	cols := make([]Column, len(t.cols))
	index := make(map[string]int, len(t.cols))
	for i, col := range t.cols {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		cols[i] = Column{Name: col.Name, Cells: cells}
		index[col.Name] = i
	}
	return Table{cols: cols, index: index}
}

// Map applies fn to every cell and returns the resulting table.
func (t Table) Map(fn func(column string, c Cell) Cell) Table {
	out := t.clone()
	for i := range out.cols {
		for j := range out.cols[i].Cells {
			out.cols[i].Cells[j] = fn(out.cols[i].Name, out.cols[i].Cells[j])
		}
	}
	return out
}

// MapColumn applies fn to every cell of the named column and returns the
// resulting table. Unknown columns leave the table unchanged.
func (t Table) MapColumn(name string, fn func(c Cell) Cell) Table {
	if !t.HasColumn(name) {
		return t
	}
	out := t.clone()
	i := out.index[name]
	for j := range out.cols[i].Cells {
		out.cols[i].Cells[j] = fn(out.cols[i].Cells[j])
	}
	return out
}

// WithColumn returns a table with the named column replaced, or appended when
// it does not exist. len(cells) must equal NumRows unless the table is empty.
func (t Table) WithColumn(name string, cells []Cell) (Table, error) {
	if t.NumColumns() > 0 && len(cells) != t.NumRows() {
		return Table{}, fmt.Errorf("column %q has %d rows, want %d", name, len(cells), t.NumRows())
	}
	out := t.clone()
	copied := make([]Cell, len(cells))
	copy(copied, cells)
	if i, ok := out.index[name]; ok {
		out.cols[i].Cells = copied
		return out, nil
	}
	out.index[name] = len(out.cols)
	out.cols = append(out.cols, Column{Name: name, Cells: copied})
	return out, nil
}

// DropEmptyColumns returns a table without columns that hold no present value
// in any row. Column order is otherwise preserved.
func (t Table) DropEmptyColumns() Table {
	kept := make([]Column, 0, len(t.cols))
	for _, col := range t.cols {
		empty := true
		for _, c := range col.Cells {
			if !c.IsAbsent() {
				empty = false
				break
			}
		}
		if !empty {
			cells := make([]Cell, len(col.Cells))
			copy(cells, col.Cells)
			kept = append(kept, Column{Name: col.Name, Cells: cells})
		}
	}
	out, _ := New(kept...) // kept columns derive from a valid table
	return out
}

// FilterRows returns a table containing only the rows for which keep returns
// true. Row order is preserved.
func (t Table) FilterRows(keep func(row int) bool) Table {
	rows := t.NumRows()
	selected := make([]int, 0, rows)
	for r := 0; r < rows; r++ {
		if keep(r) {
			selected = append(selected, r)
		}
	}
	return t.pickRows(selected)
}

// ReorderRows returns a table with rows arranged in the given order. Indexes
// out of range are skipped.
func (t Table) ReorderRows(order []int) Table {
	rows := t.NumRows()
	selected := make([]int, 0, len(order))
	for _, r := range order {
		if r >= 0 && r < rows {
			selected = append(selected, r)
		}
	}
	return t.pickRows(selected)
}

func (t Table) pickRows(rows []int) Table {
	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		cells := make([]Cell, len(rows))
		for j, r := range rows {
			cells[j] = col.Cells[r]
		}
		cols[i] = Column{Name: col.Name, Cells: cells}
	}
	out, _ := New(cols...)
	return out
}

// Equal reports whether two tables have identical column order, names, and
// cell values.
func (t Table) Equal(other Table) bool {
	if len(t.cols) != len(other.cols) || t.NumRows() != other.NumRows() {
		return false
	}
	for i, col := range t.cols {
		if col.Name != other.cols[i].Name {
			return false
		}
		for j, c := range col.Cells {
			if !c.Equal(other.cols[i].Cells[j]) {
				return false
			}
		}
	}
	return true
}
