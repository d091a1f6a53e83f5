// Package clock provides the monotonic time source used by the timer engines.
//
// In production, use Real() which reads the system monotonic clock.
// In tests, wrap a clockwork.FakeClock with New() for deterministic control
// over marks and tick waits.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Mark is an opaque snapshot of the monotonic clock. It only supports
// elapsed-time queries through the Clock that produced it.
type Mark struct {
	t time.Time
}

// IsZero reports whether the mark was never taken.
func (m Mark) IsZero() bool {
	return m.t.IsZero()
}

// Timer is a one-shot wait that can be abandoned.
type Timer interface {
	Chan() <-chan time.Time
	Stop() bool
}

// Clock is the time source for the timer engines.
type Clock interface {
	// Now takes a fresh monotonic mark.
	Now() Mark

	// Since returns the time elapsed since m. A zero mark yields zero.
	Since(m Mark) time.Duration

	// NewTimer returns a Timer that fires once after d.
	NewTimer(d time.Duration) Timer
}

type clockworkClock struct {
	c clockwork.Clock
}

// New adapts a clockwork clock (real or fake) into a Clock.
func New(c clockwork.Clock) Clock {
	return &clockworkClock{c: c}
}

// Real returns a Clock backed by the system monotonic clock.
func Real() Clock {
	return New(clockwork.NewRealClock())
}

func (c *clockworkClock) Now() Mark {
	return Mark{t: c.c.Now()}
}

func (c *clockworkClock) Since(m Mark) time.Duration {
	if m.IsZero() {
		return 0
	}
	d := c.c.Since(m.t)
	if d < 0 {
		return 0
	}
	return d
}

func (c *clockworkClock) NewTimer(d time.Duration) Timer {
	return c.c.NewTimer(d)
}
