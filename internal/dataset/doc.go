// Package dataset normalizes the UCI Air Quality export into an
// analysis-ready table.
//
// # Data Source
//
// The export comes from a roadside monitoring station in an Italian city:
// hourly averaged responses from five metal oxide chemical sensors plus
// reference analyzer readings (CO, NMHC, benzene, NOx, NO2) and weather
// variables (temperature, relative and absolute humidity). The file is
// semicolon-delimited with a header row; a trailing semicolon on every line
// produces one or two fully-empty columns that are dropped at load.
//
// # Source Format Conventions
//
// Missing readings:
//
//	The literal value -200 marks a missing reading in every column it
//	appears in. It may be written as "-200", "-200.0", or "-200,0";
//	all are matched numerically and replaced with an absent cell by
//	[ReplaceSentinel].
//
// Dates ("Date" column):
//
//	Mixed numeric formats across records, e.g. "3/10/2004" and
//	"2004-03-10". Ambiguous orderings are resolved month-first, matching
//	the exporting locale. Candidate layouts are tried in order; the first
//	match wins and an unmatched value becomes absent. See [dateLayouts].
//
// Times ("Time" column):
//
//	Separator between hour, minute, and second may be ":" or ".", and the
//	seconds field may be missing: "18:00:00", "18.00.00", "18:00" all mean
//	six in the evening. Parsed by a layered fallback chain: separators are
//	normalized, then strict HH:MM:SS, then strict HH:MM, then a permissive
//	parse of the original string. Each value resolves independently, so
//	different rows in one column may be matched by different stages.
//
// Decimal separator:
//
//	Measurement columns use a comma for the decimal point ("9,4" = 9.4).
//	[CoerceNumeric] rewrites the comma and parses the result as a float
//	for the thirteen columns listed in [MeasurementColumns]; no other
//	column is touched.
//
// Derived timestamp:
//
//	"DateTime" holds the combination of the parsed Date and Time, present
//	if and only if both parts are present and the combination parses.
//	"Datetime" is a spelling alias kept for downstream consumers; it
//	always holds identical cells. DateTime is the canonical column.
//
// Every per-value parse failure degrades to an absent cell. No parse error
// escapes a stage; only a file-level load failure is surfaced to the caller.
package dataset
