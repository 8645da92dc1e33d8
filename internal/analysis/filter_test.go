package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

func datedTable(t *testing.T) table.Table {
	t.Helper()
	return mustTable(t,
		table.Column{Name: dataset.ColDate, Cells: []table.Cell{
			table.DateCell(day(2004, 3, 10)),
			table.DateCell(day(2004, 3, 11)),
			table.AbsentCell(),
			table.DateCell(day(2004, 3, 12)),
		}},
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{
			table.FloatCell(1),
			table.FloatCell(2),
			table.FloatCell(3),
			table.FloatCell(4),
		}},
	)
}

func TestFilterByDateRange(t *testing.T) {
	tbl := datedTable(t)

	t.Run("both bounds nil returns whole table", func(t *testing.T) {
		got := FilterByDateRange(tbl, nil, nil)
		assert.True(t, got.Equal(tbl))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		from, to := day(2004, 3, 10), day(2004, 3, 11)
		got := FilterByDateRange(tbl, &from, &to)
		require.Equal(t, 2, got.NumRows())
		v, _ := got.Cell(dataset.ColCO, 0).Float()
		assert.Equal(t, 1.0, v)
		v, _ = got.Cell(dataset.ColCO, 1).Float()
		assert.Equal(t, 2.0, v)
	})

	t.Run("open lower bound", func(t *testing.T) {
		to := day(2004, 3, 10)
		got := FilterByDateRange(tbl, nil, &to)
		assert.Equal(t, 1, got.NumRows())
	})

	t.Run("absent dates excluded when a bound is set", func(t *testing.T) {
		from := day(2004, 1, 1)
		got := FilterByDateRange(tbl, &from, nil)
		assert.Equal(t, 3, got.NumRows())
	})

	t.Run("disjoint range yields no rows", func(t *testing.T) {
		from, to := day(2010, 1, 1), day(2010, 12, 31)
		got := FilterByDateRange(tbl, &from, &to)
		assert.Equal(t, 0, got.NumRows())
	})

	t.Run("input is untouched", func(t *testing.T) {
		from := day(2004, 3, 11)
		_ = FilterByDateRange(tbl, &from, nil)
		assert.Equal(t, 4, tbl.NumRows())
	})
}

func TestDailyAverages(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: dataset.ColDate, Cells: []table.Cell{
			table.DateCell(day(2004, 3, 11)),
			table.DateCell(day(2004, 3, 10)),
			table.DateCell(day(2004, 3, 11)),
			table.AbsentCell(),
		}},
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{
			table.FloatCell(2.0),
			table.FloatCell(3.0),
			table.FloatCell(4.0),
			table.FloatCell(99.0),
		}},
		table.Column{Name: dataset.ColNOx, Cells: []table.Cell{
			table.AbsentCell(),
			table.FloatCell(166.0),
			table.AbsentCell(),
			table.AbsentCell(),
		}},
		table.Column{Name: "Notes", Cells: []table.Cell{
			table.StringCell("x"),
			table.StringCell("y"),
			table.StringCell("z"),
			table.StringCell("w"),
		}},
	)

	got := DailyAverages(tbl)

	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []string{dataset.ColDate, dataset.ColCO, dataset.ColNOx}, got.ColumnNames(),
		"non-numeric columns are dropped from the aggregate")

	// Ascending by date regardless of input order.
	d0, _ := got.Cell(dataset.ColDate, 0).Time()
	d1, _ := got.Cell(dataset.ColDate, 1).Time()
	assert.Equal(t, day(2004, 3, 10), d0)
	assert.Equal(t, day(2004, 3, 11), d1)

	co0, _ := got.Cell(dataset.ColCO, 0).Float()
	co1, _ := got.Cell(dataset.ColCO, 1).Float()
	assert.Equal(t, 3.0, co0)
	assert.Equal(t, 3.0, co1, "mean of 2 and 4; the absent-date row is excluded")

	nox0, _ := got.Cell(dataset.ColNOx, 0).Float()
	assert.Equal(t, 166.0, nox0)
	assert.True(t, got.Cell(dataset.ColNOx, 1).IsAbsent(),
		"a date with no present readings gets an absent average")
}

func TestDailyAverages_NoDateColumn(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{table.FloatCell(1)}},
	)
	got := DailyAverages(tbl)
	assert.Equal(t, 0, got.NumRows())
	assert.Equal(t, 0, got.NumColumns())
}

func TestSortByDateTime(t *testing.T) {
	stamp := func(h int) table.Cell {
		return table.TimestampCell(time.Date(2004, 3, 10, h, 0, 0, 0, time.UTC))
	}
	tbl := mustTable(t,
		table.Column{Name: dataset.ColDateTime, Cells: []table.Cell{
			stamp(20),
			table.AbsentCell(),
			stamp(18),
			stamp(19),
		}},
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{
			table.FloatCell(1),
			table.FloatCell(2),
			table.FloatCell(3),
			table.FloatCell(4),
		}},
	)

	got := SortByDateTime(tbl)

	order := make([]float64, got.NumRows())
	for i := range order {
		order[i], _ = got.Cell(dataset.ColCO, i).Float()
	}
	assert.Equal(t, []float64{3, 4, 1, 2}, order, "ascending timestamps first, absent last")
}

func TestSortByDateTime_Stable(t *testing.T) {
	same := table.TimestampCell(time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC))
	tbl := mustTable(t,
		table.Column{Name: dataset.ColDateTime, Cells: []table.Cell{same, same, same}},
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{
			table.FloatCell(1), table.FloatCell(2), table.FloatCell(3),
		}},
	)

	got := SortByDateTime(tbl)
	for i, want := range []float64{1, 2, 3} {
		v, _ := got.Cell(dataset.ColCO, i).Float()
		assert.Equal(t, want, v)
	}
}
