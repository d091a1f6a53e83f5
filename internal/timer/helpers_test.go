package timer

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func newFakeClock() (*clockwork.FakeClock, clock.Clock) {
	fake := clockwork.NewFakeClock()
	return fake, clock.New(fake)
}

// blockUntilWaiters waits until exactly n goroutines are parked on the fake clock.
func blockUntilWaiters(t *testing.T, fake *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, fake.BlockUntilContext(ctx, n), "expected %d clock waiter(s)", n)
}

// advanceTick waits for the tick goroutine to park, then moves time by d.
func advanceTick(t *testing.T, fake *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	blockUntilWaiters(t, fake, 1)
	fake.Advance(d)
}

func eventuallyEqual[T comparable](t *testing.T, want T, get func() T) {
	t.Helper()
	assert.Eventually(t, func() bool { return get() == want }, waitFor, time.Millisecond,
		"want %v, last value %v", want, get())
}
