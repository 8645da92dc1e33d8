// Package csvfile loads a semicolon-delimited air quality export from the
// local filesystem into a raw string table.
package csvfile

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

// Reader extracts a raw export from a file path. It implements
// pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a file-backed extractor.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads the export into a raw table of string cells. Empty cells load
// as absent, rows shorter than the header are padded with absent cells, and
// fully-empty columns (trailing-delimiter artifacts) are dropped. The content
// fingerprint is hashed from the raw bytes as they stream through the parser.
func (r *Reader) Extract(ctx context.Context) (dataset.Export, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Export{}, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return dataset.Export{}, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	cr := csv.NewReader(io.TeeReader(f, hash))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1 // source rows are ragged around the trailing delimiter

	header, err := cr.Read()
	if err != nil {
		return dataset.Export{}, fmt.Errorf("read export header: %w", err)
	}
	names := columnNames(header)

	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i] = table.Column{Name: name}
	}

	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataset.Export{}, fmt.Errorf("read export row %d: %w", rows+1, err)
		}
		for i := range cols {
			cols[i].Cells = append(cols[i].Cells, cellFor(record, i))
		}
		rows++
	}

	raw, err := table.New(cols...)
	if err != nil {
		return dataset.Export{}, fmt.Errorf("assemble export table: %w", err)
	}
	raw = raw.DropEmptyColumns()

	fingerprint := hex.EncodeToString(hash.Sum(nil))
	r.logger.Info("export extracted",
		"path", r.path,
		"rows", rows,
		"columns", raw.NumColumns(),
		"fingerprint", fingerprint[:12],
	)

	return dataset.Export{Table: raw, Fingerprint: fingerprint, Source: r.path}, nil
}

// columnNames trims header fields and names blank ones (trailing-delimiter
// columns) uniquely so they can coexist until DropEmptyColumns removes them.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = h
	}
	return names
}

func cellFor(record []string, i int) table.Cell {
	if i >= len(record) {
		return table.AbsentCell()
	}
	v := strings.TrimSpace(record[i])
	if v == "" {
		return table.AbsentCell()
	}
	return table.StringCell(v)
}
