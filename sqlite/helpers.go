package sqlite

import (
	"fmt"
	"time"
)

// timestampFormat is RFC 3339 with a fixed-width fraction so stored
// timestamps sort lexically.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a timestamp written by formatTimestamp.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseTimestamp(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
