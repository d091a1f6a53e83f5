package domain

import (
	"fmt"
	"time"
)

// TimerMark is one lap or split recorded during a stopwatch run. Offset is a
// lap delta for MarkLap and a cumulative elapsed time for MarkSplit.
type TimerMark struct {
	Kind   MarkKind
	Seq    int
	Offset time.Duration
}

// TimerRun is a finished countdown or stopped stopwatch kept in history.
type TimerRun struct {
	ID        string
	Kind      TimerKind
	StartedAt time.Time
	Planned   time.Duration // countdown duration; zero for stopwatch runs
	Elapsed   time.Duration
	Completed bool
	Note      string
	Marks     []TimerMark
	CreatedAt time.Time
}

// Validate checks the invariants a run must hold before it is stored.
func (r *TimerRun) Validate() error {
	if _, ok := ParseTimerKind(string(r.Kind)); !ok {
		return fmt.Errorf("unknown timer kind %q", r.Kind)
	}
	if r.Elapsed < 0 {
		return fmt.Errorf("elapsed time must not be negative, got %s", r.Elapsed)
	}
	if r.Kind == KindCountdown {
		if r.Planned <= 0 {
			return fmt.Errorf("countdown run needs a positive planned duration")
		}
		if len(r.Marks) > 0 {
			return fmt.Errorf("countdown runs cannot carry laps or splits")
		}
	}
	for i, m := range r.Marks {
		if m.Kind != MarkLap && m.Kind != MarkSplit {
			return fmt.Errorf("mark %d: unknown kind %q", i, m.Kind)
		}
		if m.Offset < 0 {
			return fmt.Errorf("mark %d: offset must not be negative", i)
		}
	}
	return nil
}

// Laps returns the lap deltas in sequence order.
func (r *TimerRun) Laps() []time.Duration { return r.marksOf(MarkLap) }

// Splits returns the cumulative split times in sequence order.
func (r *TimerRun) Splits() []time.Duration { return r.marksOf(MarkSplit) }

func (r *TimerRun) marksOf(kind MarkKind) []time.Duration {
	var out []time.Duration
	for _, m := range r.Marks {
		if m.Kind == kind {
			out = append(out, m.Offset)
		}
	}
	return out
}

// NewStopwatchMarks builds the mark list for a stopwatch run, laps first.
func NewStopwatchMarks(laps, splits []time.Duration) []TimerMark {
	marks := make([]TimerMark, 0, len(laps)+len(splits))
	for i, d := range laps {
		marks = append(marks, TimerMark{Kind: MarkLap, Seq: i + 1, Offset: d})
	}
	for i, d := range splits {
		marks = append(marks, TimerMark{Kind: MarkSplit, Seq: i + 1, Offset: d})
	}
	return marks
}

// RunSummary aggregates history over a time window.
type RunSummary struct {
	Kind      TimerKind
	Runs      int
	Completed int
	Total     time.Duration
}
