package timer

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
	"github.com/alexanderramin/tempo/internal/observe"
)

// Stopwatch counts up from zero and records laps and splits.
//
// Elapsed time is re-derived on every tick from the run-start mark plus the
// time folded in by earlier pauses, so tick jitter never accumulates.
// Laps are deltas between consecutive Lap calls; splits are cumulative
// elapsed times and are never reset between laps.
type Stopwatch struct {
	mu          sync.Mutex
	opts        options
	scope       context.Context
	cancelScope context.CancelFunc

	elapsed *observe.State[time.Duration]
	running *observe.State[bool]
	laps    *observe.State[[]time.Duration]
	splits  *observe.State[[]time.Duration]

	runMark     clock.Mark
	accumulated time.Duration
	lapMark     clock.Mark
	lapAccum    time.Duration
	task        *tickTask
}

// NewStopwatch creates an idle stopwatch owned by ctx.
func NewStopwatch(ctx context.Context, opts ...Option) *Stopwatch {
	scope, cancel := context.WithCancel(ctx)
	return &Stopwatch{
		opts:        buildOptions(DefaultStopwatchTick, opts),
		scope:       scope,
		cancelScope: cancel,
		elapsed:     observe.New(time.Duration(0)),
		running:     observe.New(false),
		laps:        observe.NewFunc([]time.Duration{}, durationsEqual),
		splits:      observe.NewFunc([]time.Duration{}, durationsEqual),
	}
}

func durationsEqual(a, b []time.Duration) bool {
	return slices.Equal(a, b)
}

// Elapsed publishes the total running time.
func (s *Stopwatch) Elapsed() observe.Observable[time.Duration] { return s.elapsed }

// Running publishes whether the stopwatch is counting.
func (s *Stopwatch) Running() observe.Observable[bool] { return s.running }

// Laps publishes the recorded lap deltas in order.
func (s *Stopwatch) Laps() observe.Observable[[]time.Duration] { return s.laps }

// Splits publishes the recorded cumulative split times in order.
func (s *Stopwatch) Splits() observe.Observable[[]time.Duration] { return s.splits }

// TickInterval returns the configured tick interval.
func (s *Stopwatch) TickInterval() time.Duration { return s.opts.tick }

// State derives the lifecycle phase.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.running.Get():
		return StateRunning
	case s.accumulated > 0 || len(s.laps.Get()) > 0 || len(s.splits.Get()) > 0:
		return StatePaused
	default:
		return StateIdle
	}
}

// Now returns the exact elapsed time at the moment of the call, without
// waiting for the next tick.
func (s *Stopwatch) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Start starts or resumes counting.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// Pause folds the current run and lap segments into their accumulators
// and stops ticking.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	if !s.running.Get() {
		s.mu.Unlock()
		return
	}
	s.running.Set(false)
	s.accumulated += s.opts.clock.Since(s.runMark)
	s.lapAccum += s.opts.clock.Since(s.lapMark)
	prev := cancelTask(s.task)
	s.task = nil
	s.elapsed.Set(s.accumulated)
	s.mu.Unlock()

	awaitExit(prev)
}

// Stop cancels ticking and clears elapsed time, laps and splits.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	prev := s.stopLocked()
	s.mu.Unlock()

	awaitExit(prev)
}

// Lap records the time since the previous lap, including time folded in
// by pauses during this lap. Zero-length laps are dropped.
func (s *Stopwatch) Lap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Get() {
		return
	}

	lap := s.lapAccum + s.opts.clock.Since(s.lapMark)
	if lap > 0 {
		s.laps.Set(append(slices.Clone(s.laps.Get()), lap))
	}
	s.lapMark = s.opts.clock.Now()
	s.lapAccum = 0
}

// Split records the total elapsed time at this moment.
func (s *Stopwatch) Split() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Get() {
		return
	}
	s.splits.Set(append(slices.Clone(s.splits.Get()), s.totalLocked()))
}

// Reset zeroes all counters and history, and keeps running if it was.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	wasRunning := s.running.Get()
	prev := s.stopLocked()
	if wasRunning {
		s.startLocked()
	}
	s.mu.Unlock()

	awaitExit(prev)
}

// Close cancels any tick task and detaches the stopwatch from its scope.
func (s *Stopwatch) Close() {
	s.mu.Lock()
	if s.running.Get() {
		s.accumulated += s.opts.clock.Since(s.runMark)
		s.lapAccum += s.opts.clock.Since(s.lapMark)
		s.running.Set(false)
	}
	prev := cancelTask(s.task)
	s.task = nil
	s.cancelScope()
	s.mu.Unlock()

	awaitExit(prev)
}

func (s *Stopwatch) totalLocked() time.Duration {
	if !s.running.Get() {
		return s.accumulated
	}
	return s.accumulated + s.opts.clock.Since(s.runMark)
}

func (s *Stopwatch) startLocked() {
	if s.running.Get() || s.scope.Err() != nil {
		return
	}
	s.running.Set(true)

	now := s.opts.clock.Now()
	s.runMark = now
	s.lapMark = now

	ctx, cancel := context.WithCancel(s.scope)
	task := &tickTask{cancel: cancel, done: make(chan struct{})}
	s.task = task
	go s.tick(ctx, task)
}

func (s *Stopwatch) stopLocked() <-chan struct{} {
	prev := cancelTask(s.task)
	s.task = nil
	s.running.Set(false)
	s.elapsed.Set(0)
	s.laps.Set([]time.Duration{})
	s.splits.Set([]time.Duration{})
	s.accumulated = 0
	s.lapAccum = 0
	s.runMark = clock.Mark{}
	s.lapMark = clock.Mark{}
	return prev
}

func (s *Stopwatch) tick(ctx context.Context, task *tickTask) {
	defer close(task.done)

	for {
		s.mu.Lock()
		if ctx.Err() != nil || !s.running.Get() {
			s.mu.Unlock()
			return
		}
		s.elapsed.Set(s.accumulated + s.opts.clock.Since(s.runMark))
		s.mu.Unlock()

		if !waitTick(ctx, s.opts.clock, s.opts.tick) {
			return
		}
	}
}
