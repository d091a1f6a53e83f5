package domain

type TimerKind string

const (
	KindCountdown TimerKind = "countdown"
	KindStopwatch TimerKind = "stopwatch"
)

// ParseTimerKind accepts the stored kind names.
func ParseTimerKind(s string) (TimerKind, bool) {
	switch TimerKind(s) {
	case KindCountdown, KindStopwatch:
		return TimerKind(s), true
	}
	return "", false
}

type MarkKind string

const (
	MarkLap   MarkKind = "lap"
	MarkSplit MarkKind = "split"
)
