// Package analysis computes descriptive statistics and grouped aggregates
// over a normalized air quality table. Every function treats its input as
// immutable value data and skips absent cells; a column with no present
// values yields an explicit no-data result, never NaN statistics.
package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

// Summary holds the dataset-level overview.
type Summary struct {
	TotalRecords   int                `json:"total_records"`
	DateRange      DateRange          `json:"date_range"`
	MissingPct     map[string]float64 `json:"missing_data_percentage"`
	NumericColumns []string           `json:"numeric_columns"`
}

// DateRange is the span of the Date column. Nil bounds mean the column holds
// no present dates.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// MetricStats are the descriptive statistics of one column, computed over
// present values only.
type MetricStats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	StdDev  float64 `json:"std"`
	Samples int     `json:"samples"`
}

// metricColumns maps the curated metric names to their source columns.
var metricColumns = []struct{ metric, column string }{
	{"co", dataset.ColCO},
	{"temperature", dataset.ColTemperature},
	{"humidity", dataset.ColRelHumidity},
	{"absolute_humidity", dataset.ColAbsHumidity},
}

// Summarize returns record count, date range, per-column missing percentage,
// and the numeric column names of a normalized table.
func Summarize(t table.Table) Summary {
	rows := t.NumRows()
	missing := make(map[string]float64, t.NumColumns())
	numeric := make([]string, 0, t.NumColumns())

	for _, name := range t.ColumnNames() {
		cells, _ := t.Column(name)
		absent := 0
		for _, c := range cells {
			if c.IsAbsent() {
				absent++
			}
		}
		missing[name] = missingPct(absent, rows)
		if isNumericColumn(name, cells) {
			numeric = append(numeric, name)
		}
	}

	return Summary{
		TotalRecords:   rows,
		DateRange:      dateRange(t),
		MissingPct:     missing,
		NumericColumns: numeric,
	}
}

// missingPct returns round(100*absent/total, 2). A zero-row table reports 0.
func missingPct(absent, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(100*float64(absent)/float64(total)*100) / 100
}

// isNumericColumn reports whether a column is float-typed: every present cell
// is a float. Fully-absent measurement columns still count as numeric, since
// coercion fixed their type even when every reading was missing.
func isNumericColumn(name string, cells []table.Cell) bool {
	present := 0
	for _, c := range cells {
		if c.IsAbsent() {
			continue
		}
		if _, ok := c.Float(); !ok {
			return false
		}
		present++
	}
	if present == 0 {
		return dataset.IsMeasurementColumn(name)
	}
	return true
}

func dateRange(t table.Table) DateRange {
	cells, ok := t.Column(dataset.ColDate)
	if !ok {
		return DateRange{}
	}
	var start, end *time.Time
	for _, c := range cells {
		if c.Kind() != table.Date {
			continue
		}
		d, _ := c.Time()
		if start == nil || d.Before(*start) {
			v := d
			start = &v
		}
		if end == nil || d.After(*end) {
			v := d
			end = &v
		}
	}
	return DateRange{Start: start, End: end}
}

// ColumnMetrics computes mean/median/max/min/sample-stddev over the present
// values of one column. ok is false when the column is missing or holds no
// present numeric value; that is the "no valid data" marker, and no NaN-laden
// struct is ever returned.
func ColumnMetrics(t table.Table, column string) (MetricStats, bool) {
	cells, exists := t.Column(column)
	if !exists {
		return MetricStats{}, false
	}
	vals := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, isFloat := c.Float(); isFloat {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return MetricStats{}, false
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return MetricStats{
		Mean:    stat.Mean(vals, nil),
		Median:  median(sorted),
		Max:     floats.Max(vals),
		Min:     floats.Min(vals),
		StdDev:  sampleStdDev(vals),
		Samples: len(vals),
	}, true
}

// PollutantMetrics computes the curated metric set: CO, temperature, relative
// humidity, and absolute humidity. Columns with no valid data are omitted
// from the result.
func PollutantMetrics(t table.Table) map[string]MetricStats {
	out := make(map[string]MetricStats, len(metricColumns))
	for _, mc := range metricColumns {
		if stats, ok := ColumnMetrics(t, mc.column); ok {
			out[mc.metric] = stats
		}
	}
	return out
}

// median interpolates the midpoint of an already-sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStdDev matches the n-1 denominator convention. A single sample has
// no spread and reports 0 rather than NaN.
func sampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}
