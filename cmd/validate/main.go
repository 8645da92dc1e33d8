// Command validate runs the normalization pipeline over an export file and
// checks the result's integrity: no surviving sentinel values, temporal parse
// coverage, measurement-column typing, and summary statistics.
//
// Usage:
//
//	go run ./cmd/validate -data data/AirQualityUCI.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pmonti/air-quality-etl/internal/adapter/csvfile"
	"github.com/pmonti/air-quality-etl/internal/analysis"
	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the semicolon-delimited export")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	reader := csvfile.NewReader(dataPath, logger)

	export, err := reader.Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		return 1
	}
	normalized := analysis.SortByDateTime(dataset.Clean(export.Table))

	phases := []*phase{
		checkSentinels(normalized),
		checkTemporal(normalized),
		checkNumericTyping(normalized),
		checkIdempotence(normalized),
	}

	failed := 0
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}

	printSummary(normalized)

	if failed > 0 {
		return 1
	}
	return 0
}

// checkSentinels verifies no cell still equals the -200 sentinel.
func checkSentinels(t table.Table) *phase {
	p := &phase{name: "no surviving sentinel values"}
	for _, name := range t.ColumnNames() {
		cells, _ := t.Column(name)
		for row, c := range cells {
			if f, ok := c.Float(); ok && f == dataset.Sentinel {
				p.errorf("column %q row %d still holds %v", name, row, f)
			}
		}
	}
	return p
}

// checkTemporal reports parse coverage of the Date, Time, and DateTime
// columns and verifies the alias mirrors the canonical column.
func checkTemporal(t table.Table) *phase {
	p := &phase{name: "temporal parse coverage"}

	dates := presentCount(t, dataset.ColDate)
	times := presentCount(t, dataset.ColTime)
	stamps := presentCount(t, dataset.ColDateTime)
	fmt.Printf("       dates=%d times=%d datetimes=%d of %d rows\n", dates, times, stamps, t.NumRows())

	if stamps > dates || stamps > times {
		p.errorf("derived %d datetimes from %d dates and %d times", stamps, dates, times)
	}

	canonical, _ := t.Column(dataset.ColDateTime)
	alias, ok := t.Column(dataset.ColDatetimeAlias)
	if !ok {
		p.errorf("alias column %q missing", dataset.ColDatetimeAlias)
		return p
	}
	for row := range canonical {
		if !canonical[row].Equal(alias[row]) {
			p.errorf("alias mismatch at row %d", row)
			break
		}
	}
	return p
}

// checkNumericTyping verifies no measurement column retains raw text.
func checkNumericTyping(t table.Table) *phase {
	p := &phase{name: "measurement columns fully coerced"}
	for _, name := range dataset.MeasurementColumns {
		cells, ok := t.Column(name)
		if !ok {
			continue // dropped as fully empty, or absent from this export
		}
		for row, c := range cells {
			if _, isStr := c.Str(); isStr {
				p.errorf("column %q row %d is still text", name, row)
				break
			}
		}
	}
	return p
}

// checkIdempotence verifies a second pipeline pass changes nothing.
func checkIdempotence(t table.Table) *phase {
	p := &phase{name: "pipeline is idempotent"}
	again := dataset.Clean(t)
	if !t.Equal(again) {
		p.errorf("second normalization pass altered the table")
	}
	return p
}

func presentCount(t table.Table, column string) int {
	cells, ok := t.Column(column)
	if !ok {
		return 0
	}
	n := 0
	for _, c := range cells {
		if !c.IsAbsent() {
			n++
		}
	}
	return n
}

func printSummary(t table.Table) {
	summary := analysis.Summarize(t)
	fmt.Printf("records: %d\n", summary.TotalRecords)
	if summary.DateRange.Start != nil && summary.DateRange.End != nil {
		fmt.Printf("date range: %s .. %s\n",
			summary.DateRange.Start.Format("2006-01-02"),
			summary.DateRange.End.Format("2006-01-02"))
	}
	for metric, stats := range analysis.PollutantMetrics(t) {
		fmt.Printf("%-18s mean=%.2f median=%.2f min=%.2f max=%.2f std=%.2f n=%d\n",
			metric, stats.Mean, stats.Median, stats.Min, stats.Max, stats.StdDev, stats.Samples)
	}
}
