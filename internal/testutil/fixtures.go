package testutil

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

// Run options
type RunOption func(*domain.TimerRun)

func WithNote(n string) RunOption {
	return func(r *domain.TimerRun) {
		r.Note = n
	}
}

func WithStartedAt(t time.Time) RunOption {
	return func(r *domain.TimerRun) {
		r.StartedAt = t.UTC().Truncate(time.Second)
	}
}

func WithElapsed(d time.Duration) RunOption {
	return func(r *domain.TimerRun) {
		r.Elapsed = d
	}
}

func WithIncomplete() RunOption {
	return func(r *domain.TimerRun) {
		r.Completed = false
	}
}

// WithLaps replaces the run's laps and splits.
func WithLaps(laps []time.Duration, splits []time.Duration) RunOption {
	return func(r *domain.TimerRun) {
		r.Marks = domain.NewStopwatchMarks(laps, splits)
	}
}

// NewTestCountdownRun returns a completed countdown of the given length.
func NewTestCountdownRun(planned time.Duration, opts ...RunOption) *domain.TimerRun {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.TimerRun{
		ID:        uuid.New().String(),
		Kind:      domain.KindCountdown,
		StartedAt: now.Add(-planned).Truncate(time.Second),
		Planned:   planned,
		Elapsed:   planned,
		Completed: true,
		CreatedAt: now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewTestStopwatchRun returns a stopped stopwatch run with the given elapsed time.
func NewTestStopwatchRun(elapsed time.Duration, opts ...RunOption) *domain.TimerRun {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.TimerRun{
		ID:        uuid.New().String(),
		Kind:      domain.KindStopwatch,
		StartedAt: now.Add(-elapsed).Truncate(time.Second),
		Elapsed:   elapsed,
		Completed: true,
		CreatedAt: now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}
