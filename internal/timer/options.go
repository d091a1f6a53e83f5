// Package timer implements the countdown and stopwatch engines.
//
// Each engine is a small state machine advanced by at most one tick
// goroutine. Public operations are synchronous, safe for concurrent use,
// and tolerant of redundant calls: anything that does not apply in the
// current state is a silent no-op. State is published through
// observe.Observable values.
package timer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
)

// ErrInvalidArgument is returned when an operation receives an argument
// outside its domain, such as a non-positive countdown duration.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	DefaultCountdownTick = time.Second
	DefaultStopwatchTick = 100 * time.Millisecond
)

// State is the lifecycle phase of a timer.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// Option configures a timer at construction.
type Option func(*options)

type options struct {
	clock  clock.Clock
	tick   time.Duration
	logger *slog.Logger
}

// WithClock sets the time source. Defaults to clock.Real().
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTickInterval overrides the engine's default tick interval.
// Non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = d
		}
	}
}

// WithLogger sets the logger used for advisory messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(defaultTick time.Duration, opts []Option) options {
	o := options{tick: defaultTick}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// tickTask is the handle of the single goroutine advancing a timer.
type tickTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// cancelTask cancels t and returns the channel closed when its goroutine
// exits. A nil task yields a nil channel.
func cancelTask(t *tickTask) <-chan struct{} {
	if t == nil {
		return nil
	}
	t.cancel()
	return t.done
}

// awaitExit blocks until a cancelled tick goroutine has returned.
// Callers must not hold the timer lock.
func awaitExit(done <-chan struct{}) {
	if done != nil {
		<-done
	}
}

// waitTick blocks for d on c. It reports false when ctx ended first.
func waitTick(ctx context.Context, c clock.Clock, d time.Duration) bool {
	t := c.NewTimer(d)
	select {
	case <-ctx.Done():
		t.Stop()
		return false
	case <-t.Chan():
		return true
	}
}
