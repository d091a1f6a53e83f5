package cli

import (
	"context"
	"sync"

	"github.com/alexanderramin/tempo/internal/observe"
	tea "github.com/charmbracelet/bubbletea"
)

// timerUpdateMsg tells the owner of w that one of its streams changed.
// Views render from the latest published values, so a single pending
// signal covers any number of changes.
type timerUpdateMsg struct {
	w *watcher
}

// signal adapts an observable into a change notification stream.
type signal func(ctx context.Context) <-chan struct{}

func signalOf[T any](o observe.Observable[T]) signal {
	return func(ctx context.Context) <-chan struct{} {
		src := o.Subscribe(ctx)
		out := make(chan struct{})
		go func() {
			defer close(out)
			for range src {
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	}
}

// watcher fans several observables into one conflated channel that a
// view drains one message at a time through next.
type watcher struct {
	cancel context.CancelFunc
	ch     chan struct{}
}

func newWatcher(ctx context.Context, signals ...signal) *watcher {
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, ch: make(chan struct{}, 1)}

	var wg sync.WaitGroup
	for _, sig := range signals {
		src := sig(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range src {
				select {
				case w.ch <- struct{}{}:
				default:
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(w.ch)
	}()
	return w
}

// next waits for the next change. It yields nil once the watcher closes.
func (w *watcher) next() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.ch; !ok {
			return nil
		}
		return timerUpdateMsg{w: w}
	}
}

// Close ends every subscription behind the watcher.
func (w *watcher) Close() {
	w.cancel()
}
