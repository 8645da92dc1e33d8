package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmonti/air-quality-etl/internal/table"
)

func mustTable(t *testing.T, cols ...table.Column) table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	require.NoError(t, err)
	return tbl
}

func TestReplaceSentinel(t *testing.T) {
	tests := []struct {
		name     string
		cell     table.Cell
		expected table.Cell
	}{
		{"integer text", table.StringCell("-200"), table.AbsentCell()},
		{"decimal text", table.StringCell("-200.0"), table.AbsentCell()},
		{"comma decimal text", table.StringCell("-200,0"), table.AbsentCell()},
		{"float value", table.FloatCell(-200), table.AbsentCell()},
		{"near miss kept", table.StringCell("-200.5"), table.StringCell("-200.5")},
		{"substring not matched", table.StringCell("-2001"), table.StringCell("-2001")},
		{"plain text kept", table.StringCell("offline"), table.StringCell("offline")},
		{"other float kept", table.FloatCell(9.4), table.FloatCell(9.4)},
		{"absent stays absent", table.AbsentCell(), table.AbsentCell()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mustTable(t, table.Column{Name: "CO(GT)", Cells: []table.Cell{tt.cell}})
			out := ReplaceSentinel(in)
			assert.True(t, out.Cell("CO(GT)", 0).Equal(tt.expected))
		})
	}
}

func TestReplaceSentinel_AllColumns(t *testing.T) {
	in := mustTable(t,
		table.Column{Name: ColDate, Cells: []table.Cell{table.StringCell("-200")}},
		table.Column{Name: ColNOx, Cells: []table.Cell{table.StringCell("120,5")}},
		table.Column{Name: "Station", Cells: []table.Cell{table.StringCell("-200")}},
	)

	out := ReplaceSentinel(in)

	// The sentinel is matched by value in every column, measurement or not.
	assert.True(t, out.Cell(ColDate, 0).IsAbsent())
	assert.True(t, out.Cell("Station", 0).IsAbsent())
	assert.True(t, out.Cell(ColNOx, 0).Equal(table.StringCell("120,5")))

	// Input not mutated.
	assert.True(t, in.Cell(ColDate, 0).Equal(table.StringCell("-200")))
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		name     string
		cell     table.Cell
		expected table.Cell
	}{
		{"comma decimal", table.StringCell("9,4"), table.FloatCell(9.4)},
		{"dot decimal", table.StringCell("11.9"), table.FloatCell(11.9)},
		{"integer", table.StringCell("1360"), table.FloatCell(1360)},
		{"negative", table.StringCell("-3,5"), table.FloatCell(-3.5)},
		{"whitespace trimmed", table.StringCell(" 48,9 "), table.FloatCell(48.9)},
		{"garbage becomes absent", table.StringCell("n/a"), table.AbsentCell()},
		{"already float kept", table.FloatCell(2.5), table.FloatCell(2.5)},
		{"absent kept", table.AbsentCell(), table.AbsentCell()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mustTable(t, table.Column{Name: ColCO, Cells: []table.Cell{tt.cell}})
			out := CoerceNumeric(in)
			assert.True(t, out.Cell(ColCO, 0).Equal(tt.expected), "got %v", out.Cell(ColCO, 0))
		})
	}
}

func TestCoerceNumeric_OnlyNamedColumns(t *testing.T) {
	in := mustTable(t,
		table.Column{Name: ColCO, Cells: []table.Cell{table.StringCell("2,6")}},
		table.Column{Name: "Notes", Cells: []table.Cell{table.StringCell("1,5 calibration")}},
	)

	out := CoerceNumeric(in)

	assert.True(t, out.Cell(ColCO, 0).Equal(table.FloatCell(2.6)))
	// A column outside the named set keeps its commas and its text.
	assert.True(t, out.Cell("Notes", 0).Equal(table.StringCell("1,5 calibration")))
}

func TestCoerceNumeric_MalformedCellIsolated(t *testing.T) {
	in := mustTable(t, table.Column{Name: ColBenzene, Cells: []table.Cell{
		table.StringCell("11,9"),
		table.StringCell("bad"),
		table.StringCell("9,2"),
	}})

	out := CoerceNumeric(in)

	assert.True(t, out.Cell(ColBenzene, 0).Equal(table.FloatCell(11.9)))
	assert.True(t, out.Cell(ColBenzene, 1).IsAbsent())
	assert.True(t, out.Cell(ColBenzene, 2).Equal(table.FloatCell(9.2)))
}

func TestClean_EndToEnd(t *testing.T) {
	in := mustTable(t,
		table.Column{Name: ColDate, Cells: []table.Cell{
			table.StringCell("3/10/2004"),
			table.StringCell("3/10/2004"),
		}},
		table.Column{Name: ColTime, Cells: []table.Cell{
			table.StringCell("18.00.00"),
			table.StringCell("19.00.00"),
		}},
		table.Column{Name: ColCO, Cells: []table.Cell{
			table.StringCell("2,6"),
			table.StringCell("-200"),
		}},
	)

	out := Clean(in)

	assert.Equal(t, table.Date, out.Cell(ColDate, 0).Kind())
	assert.Equal(t, table.TimeOfDay, out.Cell(ColTime, 0).Kind())
	assert.Equal(t, table.Timestamp, out.Cell(ColDateTime, 0).Kind())
	assert.True(t, out.Cell(ColCO, 0).Equal(table.FloatCell(2.6)))
	assert.True(t, out.Cell(ColCO, 1).IsAbsent())

	// No cell anywhere still holds the sentinel.
	for _, name := range out.ColumnNames() {
		cells, _ := out.Column(name)
		for _, c := range cells {
			if f, ok := c.Float(); ok {
				assert.NotEqual(t, Sentinel, f)
			}
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	in := mustTable(t,
		table.Column{Name: ColDate, Cells: []table.Cell{
			table.StringCell("3/10/2004"),
			table.StringCell("not-a-date"),
		}},
		table.Column{Name: ColTime, Cells: []table.Cell{
			table.StringCell("18:00"),
			table.StringCell("08.30.00"),
		}},
		table.Column{Name: ColTemperature, Cells: []table.Cell{
			table.StringCell("13,6"),
			table.StringCell("-200"),
		}},
	)

	once := Clean(in)
	twice := Clean(once)

	assert.True(t, once.Equal(twice), "second pass must not change any cell")
}
