package dataset

import (
	"strconv"
	"strings"

	"github.com/pmonti/air-quality-etl/internal/table"
)

// Clean runs the full normalization over a raw table: sentinel replacement,
// temporal parsing, then numeric coercion. Each stage returns a fresh table;
// the input is never mutated. Clean is idempotent: already-normalized cells
// pass through every stage unchanged.
func Clean(t table.Table) table.Table {
	t = ReplaceSentinel(t)
	t = ParseTemporal(t)
	t = CoerceNumeric(t)
	return t
}

// ReplaceSentinel replaces every cell numerically equal to the -200 sentinel
// with an absent cell, across all columns regardless of type. Matching is by
// value: "-200", "-200.0", "-200,0", and float -200 are all equivalent. Text
// that is not numerically the sentinel is left alone.
func ReplaceSentinel(t table.Table) table.Table {
	return t.Map(func(_ string, c table.Cell) table.Cell {
		if isSentinel(c) {
			return table.AbsentCell()
		}
		return c
	})
}

func isSentinel(c table.Cell) bool {
	if f, ok := c.Float(); ok {
		return f == Sentinel
	}
	s, ok := c.Str()
	if !ok {
		return false
	}
	f, err := parseLocaleFloat(s)
	return err == nil && f == Sentinel
}

// CoerceNumeric converts the textual cells of the named measurement columns
// from comma-decimal notation to floats. A cell that fails to parse becomes
// absent; sibling cells are unaffected. Columns outside [MeasurementColumns]
// are never altered. Already-numeric cells pass through.
func CoerceNumeric(t table.Table) table.Table {
	for _, name := range MeasurementColumns {
		t = t.MapColumn(name, coerceCell)
	}
	return t
}

func coerceCell(c table.Cell) table.Cell {
	s, ok := c.Str()
	if !ok {
		return c
	}
	f, err := parseLocaleFloat(s)
	if err != nil {
		return table.AbsentCell()
	}
	return table.FloatCell(f)
}

// parseLocaleFloat parses a number that may use a comma as the decimal
// separator.
func parseLocaleFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
