package dataset

import (
	"strings"
	"time"

	"github.com/pmonti/air-quality-etl/internal/table"
)

// dateLayouts are the candidate date formats, tried in order per value.
// Month-leading layouts come first so ambiguous numeric dates resolve
// month-first; day-leading layouts catch values impossible month-first
// (e.g. "13/04/2004").
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
}

// looseTimeLayouts are tried against the original, un-normalized string as
// the last resort of the time fallback chain.
var looseTimeLayouts = []string{
	"3:04:05 PM",
	"3:04 PM",
	"3PM",
	"150405",
	"1504",
}

// timestampLayouts parse the "YYYY-MM-DD <time>" concatenation built during
// DateTime derivation.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTemporal parses the Date and Time columns and derives the combined
// DateTime column (plus its Datetime alias). Each value is parsed
// independently; failures become absent cells. A missing Date or Time column
// is skipped, and the derived columns are then all-absent.
func ParseTemporal(t table.Table) table.Table {
	t = t.MapColumn(ColDate, dateCell)
	t = t.MapColumn(ColTime, timeCell)
	return deriveDateTime(t)
}

func dateCell(c table.Cell) table.Cell {
	if c.Kind() == table.Date {
		return c
	}
	s, ok := c.Str()
	if !ok {
		return table.AbsentCell()
	}
	d, ok := parseDate(s)
	if !ok {
		return table.AbsentCell()
	}
	return table.DateCell(d)
}

func timeCell(c table.Cell) table.Cell {
	if c.Kind() == table.TimeOfDay {
		return c
	}
	s, ok := c.Str()
	if !ok {
		return table.AbsentCell()
	}
	tod, ok := parseTimeOfDay(s)
	if !ok {
		return table.AbsentCell()
	}
	return table.TimeCell(tod)
}

// parseDate tries each candidate layout in order; the first match wins.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// parseTimeOfDay resolves a time string through the fallback chain:
//
//  1. normalize "." separators to ":"
//  2. strict HH:MM:SS on the normalized string
//  3. strict HH:MM on the normalized string
//  4. permissive layouts against the original string
//
// The first stage that succeeds wins; exhaustion means absent.
func parseTimeOfDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	norm := strings.ReplaceAll(s, ".", ":")
	if tod, err := time.Parse("15:04:05", norm); err == nil {
		return tod, true
	}
	if tod, err := time.Parse("15:04", norm); err == nil {
		return tod, true
	}
	for _, layout := range looseTimeLayouts {
		if tod, err := time.Parse(layout, s); err == nil {
			return tod, true
		}
	}
	return time.Time{}, false
}

// deriveDateTime builds the combined timestamp column. A row's DateTime is
// present if and only if both its Date and Time parsed; the combination is
// formatted as "YYYY-MM-DD HH:MM:SS" text and re-parsed, so a failed
// combination also degrades to absent. The Datetime alias column always
// mirrors DateTime cell for cell.
func deriveDateTime(t table.Table) table.Table {
	rows := t.NumRows()
	combined := make([]table.Cell, rows)
	for i := range combined {
		combined[i] = table.AbsentCell()
	}

	dates, hasDate := t.Column(ColDate)
	times, hasTime := t.Column(ColTime)
	if hasDate && hasTime {
		for i := 0; i < rows; i++ {
			combined[i] = combineCell(dates[i], times[i])
		}
	}

	out, err := t.WithColumn(ColDateTime, combined)
	if err != nil {
		return t
	}
	out, err = out.WithColumn(ColDatetimeAlias, combined)
	if err != nil {
		return t
	}
	return out
}

func combineCell(date, tod table.Cell) table.Cell {
	d, ok := date.Time()
	if !ok || date.Kind() != table.Date {
		return table.AbsentCell()
	}
	tm, ok := tod.Time()
	if !ok || tod.Kind() != table.TimeOfDay {
		return table.AbsentCell()
	}

	text := d.Format("2006-01-02") + " " + tm.Format("15:04:05")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return table.TimestampCell(ts)
		}
	}
	return table.AbsentCell()
}
