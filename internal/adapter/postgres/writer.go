// Package postgres persists normalized air quality records for downstream
// analytical queries.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/pmonti/air-quality-etl/internal/dataset"
)

// insertBatchSize keeps each INSERT under the postgres placeholder limit.
const insertBatchSize = 500

// Writer stores normalized records in the air_quality_readings table. It
// implements pipeline.Sink.
type Writer struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewWriter opens a connection pool for the given DSN.
func NewWriter(dsn string, logger *slog.Logger) (*Writer, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Writer{db: db, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "postgres" }

// Publish upserts records in batches. Deterministic IDs make the insert
// idempotent: replaying the same export hits ON CONFLICT DO NOTHING.
func (w *Writer) Publish(ctx context.Context, records []dataset.Record) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		if err := w.insertBatch(ctx, records[start:end]); err != nil {
			return fmt.Errorf("insert records %d..%d: %w", start, end, err)
		}
	}
	return nil
}

func (w *Writer) insertBatch(ctx context.Context, records []dataset.Record) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO air_quality_readings (
			id, reading_date, reading_time, reading_at,
			co_gt, pt08_s1_co, nmhc_gt, c6h6_gt, pt08_s2_nmhc,
			nox_gt, pt08_s3_nox, no2_gt, pt08_s4_no2, pt08_s5_o3,
			temperature, relative_humidity, absolute_humidity,
			processed_at
		) VALUES (
			:id, :date, :time, :timestamp,
			:co_gt, :pt08_s1_co, :nmhc_gt, :c6h6_gt, :pt08_s2_nmhc,
			:nox_gt, :pt08_s3_nox, :no2_gt, :pt08_s4_no2, :pt08_s5_o3,
			:temperature, :relative_humidity, :absolute_humidity,
			:processed_at
		)
		ON CONFLICT (id) DO NOTHING
	`
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = map[string]any{
			"id":                rec.ID,
			"date":              rec.Date,
			"time":              rec.Time,
			"timestamp":         rec.Timestamp,
			"co_gt":             rec.CO,
			"pt08_s1_co":        rec.SensorCO,
			"nmhc_gt":           rec.NMHC,
			"c6h6_gt":           rec.Benzene,
			"pt08_s2_nmhc":      rec.SensorNMHC,
			"nox_gt":            rec.NOx,
			"pt08_s3_nox":       rec.SensorNOx,
			"no2_gt":            rec.NO2,
			"pt08_s4_no2":       rec.SensorNO2,
			"pt08_s5_o3":        rec.SensorO3,
			"temperature":       rec.Temperature,
			"relative_humidity": rec.RelHumidity,
			"absolute_humidity": rec.AbsHumidity,
			"processed_at":      rec.ProcessedAt,
		}
	}
	_, err := w.db.NamedExecContext(ctx, query, rows)
	return err
}

// Close releases the connection pool.
func (w *Writer) Close() error {
	return w.db.Close()
}
