package analysis

import (
	"sort"
	"time"

	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

// FilterByDateRange returns the rows whose Date falls inside [from, to],
// inclusive on both bounds. A nil bound leaves that side unconstrained; with
// both bounds nil the table is returned whole. Rows with an absent Date are
// excluded once any bound is set, since they cannot satisfy a comparison.
func FilterByDateRange(t table.Table, from, to *time.Time) table.Table {
	if from == nil && to == nil {
		return t
	}
	dates, ok := t.Column(dataset.ColDate)
	if !ok {
		return t
	}
	return t.FilterRows(func(row int) bool {
		c := dates[row]
		if c.Kind() != table.Date {
			return false
		}
		d, _ := c.Time()
		if from != nil && d.Before(*from) {
			return false
		}
		if to != nil && d.After(*to) {
			return false
		}
		return true
	})
}

// DailyAverages groups rows by Date and averages every numeric column over
// its present values, returning one row per date in ascending date order.
// Rows with an absent Date are excluded from grouping; a date with no present
// value in some column gets an absent cell there.
func DailyAverages(t table.Table) table.Table {
	dates, ok := t.Column(dataset.ColDate)
	if !ok {
		return table.Table{}
	}

	numeric := make([]string, 0, t.NumColumns())
	for _, name := range t.ColumnNames() {
		cells, _ := t.Column(name)
		if name != dataset.ColDate && isNumericColumn(name, cells) {
			numeric = append(numeric, name)
		}
	}

	type accum struct {
		sum   map[string]float64
		count map[string]int
	}
	groups := make(map[time.Time]*accum)
	order := make([]time.Time, 0)

	for row, c := range dates {
		if c.Kind() != table.Date {
			continue
		}
		day, _ := c.Time()
		g, seen := groups[day]
		if !seen {
			g = &accum{sum: make(map[string]float64), count: make(map[string]int)}
			groups[day] = g
			order = append(order, day)
		}
		for _, name := range numeric {
			if f, isFloat := t.Cell(name, row).Float(); isFloat {
				g.sum[name] += f
				g.count[name]++
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	cols := make([]table.Column, 0, len(numeric)+1)
	dateCells := make([]table.Cell, len(order))
	for i, day := range order {
		dateCells[i] = table.DateCell(day)
	}
	cols = append(cols, table.Column{Name: dataset.ColDate, Cells: dateCells})

	for _, name := range numeric {
		cells := make([]table.Cell, len(order))
		for i, day := range order {
			g := groups[day]
			if n := g.count[name]; n > 0 {
				cells[i] = table.FloatCell(g.sum[name] / float64(n))
			} else {
				cells[i] = table.AbsentCell()
			}
		}
		cols = append(cols, table.Column{Name: name, Cells: cells})
	}

	out, err := table.New(cols...)
	if err != nil {
		return table.Table{}
	}
	return out
}

// SortByDateTime returns the table's rows ordered by the derived DateTime
// column, ascending, with absent timestamps last. The sort is stable, so rows
// sharing a timestamp keep their load order. The cleaning stages never sort;
// this runs once at the load boundary.
func SortByDateTime(t table.Table) table.Table {
	stamps, ok := t.Column(dataset.ColDateTime)
	if !ok {
		return t
	}
	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, aOK := stamps[order[i]].Time()
		b, bOK := stamps[order[j]].Time()
		if aOK != bOK {
			return aOK // present before absent
		}
		if !aOK {
			return false
		}
		return a.Before(b)
	})
	return t.ReorderRows(order)
}
