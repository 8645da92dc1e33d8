package dataset

// Column names as spelled in the source export. Parenthesized gas formulas
// and sensor designations are part of the identifier.
const (
	ColDate     = "Date"
	ColTime     = "Time"
	ColDateTime = "DateTime"

	// ColDatetimeAlias duplicates ColDateTime under the lowercase-t spelling
	// some consumers expect. Both columns always hold identical cells.
	ColDatetimeAlias = "Datetime"

	ColCO          = "CO(GT)"
	ColSensorCO    = "PT08.S1(CO)"
	ColNMHC        = "NMHC(GT)"
	ColBenzene     = "C6H6(GT)"
	ColSensorNMHC  = "PT08.S2(NMHC)"
	ColNOx         = "NOx(GT)"
	ColSensorNOx   = "PT08.S3(NOx)"
	ColNO2         = "NO2(GT)"
	ColSensorNO2   = "PT08.S4(NO2)"
	ColSensorO3    = "PT08.S5(O3)"
	ColTemperature = "T"
	ColRelHumidity = "RH"
	ColAbsHumidity = "AH"
)

// Sentinel is the source's out-of-band marker for a missing reading.
const Sentinel = -200.0

// MeasurementColumns is the fixed set of columns coerced to floats, in export
// order.
var MeasurementColumns = []string{
	ColCO,
	ColSensorCO,
	ColNMHC,
	ColBenzene,
	ColSensorNMHC,
	ColNOx,
	ColSensorNOx,
	ColNO2,
	ColSensorNO2,
	ColSensorO3,
	ColTemperature,
	ColRelHumidity,
	ColAbsHumidity,
}

// measurementSet answers "is this a measurement column" without scanning.
var measurementSet = func() map[string]bool {
	set := make(map[string]bool, len(MeasurementColumns))
	for _, name := range MeasurementColumns {
		set[name] = true
	}
	return set
}()

// IsMeasurementColumn reports whether name is one of the thirteen coerced
// measurement columns.
func IsMeasurementColumn(name string) bool { return measurementSet[name] }
