package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pmonti/air-quality-etl/internal/table"
)

// Record is one normalized row in sink-friendly form. Nil fields are absent
// readings; they marshal away under omitempty so consumers never see a
// sentinel or a placeholder zero.
type Record struct {
	ID        string     `json:"id"`
	Date      *time.Time `json:"date,omitempty"`
	Time      *string    `json:"time,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	CO          *float64 `json:"co_gt,omitempty"`
	SensorCO    *float64 `json:"pt08_s1_co,omitempty"`
	NMHC        *float64 `json:"nmhc_gt,omitempty"`
	Benzene     *float64 `json:"c6h6_gt,omitempty"`
	SensorNMHC  *float64 `json:"pt08_s2_nmhc,omitempty"`
	NOx         *float64 `json:"nox_gt,omitempty"`
	SensorNOx   *float64 `json:"pt08_s3_nox,omitempty"`
	NO2         *float64 `json:"no2_gt,omitempty"`
	SensorNO2   *float64 `json:"pt08_s4_no2,omitempty"`
	SensorO3    *float64 `json:"pt08_s5_o3,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	RelHumidity *float64 `json:"relative_humidity,omitempty"`
	AbsHumidity *float64 `json:"absolute_humidity,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Records converts a normalized table into sink records, one per row, in row
// order. ProcessedAt is stamped from the package clock.
func Records(t table.Table) []Record {
	rows := t.NumRows()
	now := clock.Now()
	out := make([]Record, rows)
	for r := 0; r < rows; r++ {
		rec := Record{
			Date:        datePtr(t.Cell(ColDate, r)),
			Time:        timeTextPtr(t.Cell(ColTime, r)),
			Timestamp:   timestampPtr(t.Cell(ColDateTime, r)),
			CO:          floatPtr(t.Cell(ColCO, r)),
			SensorCO:    floatPtr(t.Cell(ColSensorCO, r)),
			NMHC:        floatPtr(t.Cell(ColNMHC, r)),
			Benzene:     floatPtr(t.Cell(ColBenzene, r)),
			SensorNMHC:  floatPtr(t.Cell(ColSensorNMHC, r)),
			NOx:         floatPtr(t.Cell(ColNOx, r)),
			SensorNOx:   floatPtr(t.Cell(ColSensorNOx, r)),
			NO2:         floatPtr(t.Cell(ColNO2, r)),
			SensorNO2:   floatPtr(t.Cell(ColSensorNO2, r)),
			SensorO3:    floatPtr(t.Cell(ColSensorO3, r)),
			Temperature: floatPtr(t.Cell(ColTemperature, r)),
			RelHumidity: floatPtr(t.Cell(ColRelHumidity, r)),
			AbsHumidity: floatPtr(t.Cell(ColAbsHumidity, r)),
			ProcessedAt: now,
		}
		rec.ID = generateID(rec, r)
		out[r] = rec
	}
	return out
}

// generateID produces a deterministic ID from a record's temporal identity.
// Replaying the same export yields the same IDs, which keeps downstream
// upserts idempotent (ON CONFLICT DO NOTHING). Rows lacking a timestamp fall
// back to the row position so IDs stay unique within one export.
func generateID(rec Record, row int) string {
	var key string
	switch {
	case rec.Timestamp != nil:
		key = rec.Timestamp.UTC().Format(time.RFC3339)
	case rec.Date != nil && rec.Time != nil:
		key = rec.Date.UTC().Format("2006-01-02") + "|" + *rec.Time
	default:
		key = fmt.Sprintf("row|%d", row)
	}
	hash := sha256.Sum256([]byte(key))
	return "aq-" + hex.EncodeToString(hash[:8])
}

func floatPtr(c table.Cell) *float64 {
	f, ok := c.Float()
	if !ok {
		return nil
	}
	return &f
}

func datePtr(c table.Cell) *time.Time {
	if c.Kind() != table.Date {
		return nil
	}
	d, _ := c.Time()
	return &d
}

func timestampPtr(c table.Cell) *time.Time {
	if c.Kind() != table.Timestamp {
		return nil
	}
	ts, _ := c.Time()
	return &ts
}

func timeTextPtr(c table.Cell) *string {
	if c.Kind() != table.TimeOfDay {
		return nil
	}
	tod, _ := c.Time()
	s := tod.Format("15:04:05")
	return &s
}
