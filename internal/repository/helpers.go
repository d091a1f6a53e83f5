package repository

import (
	"time"
)

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// durationToMs stores durations at millisecond precision, which is all the
// engines ever display.
func durationToMs(d time.Duration) int64 {
	return d.Milliseconds()
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// clampLimit maps a non-positive limit to SQLite's "no limit".
func clampLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
