package mission

import (
	"fmt"
	"time"
)

const numberPrefix = "MSN"

// SequenceDay is the key of the daily mission counter for t, in UTC.
func SequenceDay(t time.Time) string {
	return t.UTC().Format("060102")
}

// FormatNumber renders a human readable mission number such as MSN2610180042:
// the prefix, the UTC day as yymmdd and a four digit daily sequence.
//
// Example:
//
//	number := mission.FormatNumber(now, 42) // MSN2610180042
func FormatNumber(t time.Time, sequence int) string {
	return fmt.Sprintf("%s%s%04d", numberPrefix, SequenceDay(t), sequence)
}
