// Command genmock writes a synthetic air quality export that reproduces the
// source format's quirks: semicolon delimiters, a trailing delimiter, mixed
// date and time formats, comma decimal separators, and -200 sentinels.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/airquality_mock.csv -rows 240 -seed 42
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pmonti/air-quality-etl/internal/dataset"
)

// sentinelRate is the fraction of readings replaced with the -200 marker,
// roughly matching the real export's gap density.
const sentinelRate = 0.12

func main() {
	out := flag.String("out", "data/mock/airquality_mock.csv", "output path")
	rows := flag.Int("rows", 240, "number of hourly rows")
	seed := flag.Int64("seed", 42, "random seed for reproducible output")
	flag.Parse()

	if err := run(*out, *rows, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "genmock: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", *rows, *out)
}

func run(out string, rows int, seed int64) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(seed))

	header := append([]string{dataset.ColDate, dataset.ColTime}, dataset.MeasurementColumns...)
	// The real export ends every line with two trailing semicolons.
	fmt.Fprintf(w, "%s;;\n", strings.Join(header, ";"))

	start := time.Date(2004, time.March, 10, 18, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		fields := append([]string{formatDate(rng, ts), formatTime(rng, ts)}, readings(rng)...)
		fmt.Fprintf(w, "%s;;\n", strings.Join(fields, ";"))
	}

	return w.Flush()
}

// formatDate picks one of the orderings seen in real exports.
func formatDate(rng *rand.Rand, ts time.Time) string {
	switch rng.Intn(3) {
	case 0:
		return ts.Format("1/2/2006")
	case 1:
		return ts.Format("01/02/2006")
	default:
		return ts.Format("2006-01-02")
	}
}

// formatTime mixes the separator and component-count variants the parser's
// fallback chain must handle.
func formatTime(rng *rand.Rand, ts time.Time) string {
	switch rng.Intn(3) {
	case 0:
		return ts.Format("15:04:05")
	case 1:
		return ts.Format("15.04.05")
	default:
		return ts.Format("15:04")
	}
}

func readings(rng *rand.Rand) []string {
	out := make([]string, len(dataset.MeasurementColumns))
	for i := range out {
		if rng.Float64() < sentinelRate {
			out[i] = "-200"
			continue
		}
		// Comma decimal separator, one decimal place, range loosely shaped
		// like sensor responses.
		v := rng.Float64() * 200
		out[i] = strings.Replace(fmt.Sprintf("%.1f", v), ".", ",", 1)
	}
	return out
}
