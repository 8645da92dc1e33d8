package dataset

import "github.com/pmonti/air-quality-etl/internal/table"

// Export is a raw table straight off the loader, paired with the SHA-256
// fingerprint of the source bytes. The fingerprint keys the boundary's
// memoization cache: identical input bytes always normalize to an identical
// table.
type Export struct {
	Table       table.Table
	Fingerprint string
	Source      string
}
