package domain

import (
	"fmt"
	"time"
)

// FormatClock renders d as MM:SS, or MM:SS.mmm with millis. Minutes are not
// wrapped into hours, so an hour reads 60:00. Negative input renders as zero.
func FormatClock(d time.Duration, withMillis bool) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	minutes, seconds := total/60, total%60
	if !withMillis {
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	millis := int64((d % time.Second) / time.Millisecond)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}
