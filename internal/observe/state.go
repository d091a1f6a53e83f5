// Package observe provides a push-style observable value with
// replay-latest semantics, decoupled from any UI framework.
//
// A State always holds a value. Subscribers receive the current value
// immediately and then the newest value after every change. Delivery is
// conflated: a subscriber that falls behind skips intermediate values and
// only ever observes the most recent one.
package observe

import (
	"context"
	"sync"
)

// Observable is the read-only view of a State handed to consumers.
type Observable[T any] interface {
	Get() T
	Subscribe(ctx context.Context) <-chan T
}

// State holds the latest value of T and fans changes out to subscribers.
type State[T any] struct {
	mu    sync.Mutex
	value T
	equal func(a, b T) bool
	subs  map[chan T]struct{}
}

// New creates a State for a comparable type, suppressing notifications
// when Set stores a value equal to the current one.
func New[T comparable](initial T) *State[T] {
	return NewFunc(initial, func(a, b T) bool { return a == b })
}

// NewFunc creates a State whose change detection uses equal.
// A nil equal notifies on every Set.
func NewFunc[T any](initial T, equal func(a, b T) bool) *State[T] {
	return &State[T]{
		value: initial,
		equal: equal,
		subs:  make(map[chan T]struct{}),
	}
}

// Get returns the latest value.
func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores v and notifies subscribers if it differs from the current value.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.equal != nil && s.equal(s.value, v) {
		return
	}
	s.value = v
	for ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that first yields the current value and then
// every subsequent change. The channel is closed when ctx is done.
func (s *State[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	s.mu.Lock()
	ch <- s.value
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions.
func (s *State[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// offer replaces any undelivered value in ch with v. Callers hold the
// State lock, so this is the only sender and the send cannot block.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
