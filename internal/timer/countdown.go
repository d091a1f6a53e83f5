package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/observe"
)

// CountdownTimer counts a duration down to zero.
//
// Remaining time is decremented by the tick interval on every tick and
// clamped at zero; reaching zero stops ticking and clears the running flag.
type CountdownTimer struct {
	mu          sync.Mutex
	opts        options
	scope       context.Context
	cancelScope context.CancelFunc

	remaining *observe.State[time.Duration]
	running   *observe.State[bool]
	initial   time.Duration
	task      *tickTask
	onFinish  func()
	// callbacks tracks OnFinish calls still running; Close waits for them.
	callbacks sync.WaitGroup
}

// Snapshot is the countdown as Stop found it.
type Snapshot struct {
	State     State
	Initial   time.Duration
	Remaining time.Duration
}

// NewCountdownTimer creates an idle countdown owned by ctx. Cancelling ctx
// or calling Close ends any pending tick task.
func NewCountdownTimer(ctx context.Context, opts ...Option) *CountdownTimer {
	scope, cancel := context.WithCancel(ctx)
	return &CountdownTimer{
		opts:        buildOptions(DefaultCountdownTick, opts),
		scope:       scope,
		cancelScope: cancel,
		remaining:   observe.New(time.Duration(0)),
		running:     observe.New(false),
	}
}

// Remaining publishes the time left. It is zero when idle or finished.
func (c *CountdownTimer) Remaining() observe.Observable[time.Duration] { return c.remaining }

// Running publishes whether the countdown is ticking.
func (c *CountdownTimer) Running() observe.Observable[bool] { return c.running }

// TickInterval returns the configured tick interval.
func (c *CountdownTimer) TickInterval() time.Duration { return c.opts.tick }

// InitialDuration returns the duration of the last Start, or zero after Stop.
func (c *CountdownTimer) InitialDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initial
}

// State derives the lifecycle phase from the published values.
func (c *CountdownTimer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *CountdownTimer) stateLocked() State {
	switch {
	case c.running.Get():
		return StateRunning
	case c.remaining.Get() > 0:
		return StatePaused
	case c.initial > 0:
		return StateFinished
	default:
		return StateIdle
	}
}

// OnFinish registers fn to run each time the countdown reaches zero on its
// own. It is not called for Stop or Pause. fn runs on the tick goroutine
// after it has released the timer, so it may call back into c, except for
// Close, which waits for fn to return.
func (c *CountdownTimer) OnFinish(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinish = fn
}

// Start begins counting down from d, replacing any countdown in progress.
func (c *CountdownTimer) Start(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("countdown duration must be positive, got %s: %w", d, ErrInvalidArgument)
	}

	c.mu.Lock()
	prev := c.resetLocked()
	c.initial = d
	c.remaining.Set(d)
	c.startTickingLocked()
	c.mu.Unlock()

	awaitExit(prev)
	return nil
}

// Pause halts ticking and preserves the remaining time.
func (c *CountdownTimer) Pause() {
	c.mu.Lock()
	if c.task == nil {
		c.mu.Unlock()
		return
	}
	prev := cancelTask(c.task)
	c.task = nil
	c.running.Set(false)
	c.mu.Unlock()

	awaitExit(prev)
}

// Resume continues a paused countdown from its remaining time.
func (c *CountdownTimer) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running.Get() || c.remaining.Get() <= 0 {
		return
	}
	c.startTickingLocked()
}

// Stop cancels the countdown and clears remaining and initial durations.
// It returns the countdown as it was, read under the same lock, so a
// final tick can never land between the snapshot and the stop.
func (c *CountdownTimer) Stop() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		State:     c.stateLocked(),
		Initial:   c.initial,
		Remaining: c.remaining.Get(),
	}
	prev := c.resetLocked()
	c.mu.Unlock()

	awaitExit(prev)
	return snap
}

// Restart starts again from the last initial duration. Without one it logs
// a warning and does nothing.
func (c *CountdownTimer) Restart() {
	c.mu.Lock()
	initial := c.initial
	c.mu.Unlock()

	if initial <= 0 {
		c.opts.logger.Warn("cannot restart countdown: no duration has been started yet")
		return
	}
	_ = c.Start(initial)
}

// Close cancels any tick task, waits for a running OnFinish callback and
// detaches the timer from its scope. Later operations leave the timer
// stopped.
func (c *CountdownTimer) Close() {
	c.mu.Lock()
	prev := cancelTask(c.task)
	c.task = nil
	c.running.Set(false)
	c.cancelScope()
	c.mu.Unlock()

	awaitExit(prev)
	c.callbacks.Wait()
}

func (c *CountdownTimer) resetLocked() <-chan struct{} {
	prev := cancelTask(c.task)
	c.task = nil
	c.remaining.Set(0)
	c.running.Set(false)
	c.initial = 0
	return prev
}

func (c *CountdownTimer) startTickingLocked() {
	if c.scope.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(c.scope)
	task := &tickTask{cancel: cancel, done: make(chan struct{})}
	c.task = task
	c.running.Set(true)
	go c.tick(ctx, task)
}

func (c *CountdownTimer) tick(ctx context.Context, task *tickTask) {
	var finished func()
	defer func() {
		close(task.done)
		if finished != nil {
			defer c.callbacks.Done()
			finished()
		}
	}()

	for {
		c.mu.Lock()
		active := ctx.Err() == nil && c.running.Get() && c.remaining.Get() > 0
		c.mu.Unlock()
		if !active {
			return
		}

		if !waitTick(ctx, c.opts.clock, c.opts.tick) {
			return
		}

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		next := c.remaining.Get() - c.opts.tick
		if next < 0 {
			next = 0
		}
		c.remaining.Set(next)
		if next == 0 {
			c.running.Set(false)
			c.task = nil
			finished = c.onFinish
			if finished != nil {
				c.callbacks.Add(1)
			}
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}
