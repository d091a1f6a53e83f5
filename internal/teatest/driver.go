// Package teatest drives bubbletea models synchronously in tests.
//
// The Driver stands in for tea.Program: it calls Update directly and runs
// every returned Cmd in place, feeding the resulting messages back in.
// A Cmd that waits on something external, such as a timer subscription,
// is parked once it misses a short deadline. Parked Cmds deliver their
// message on the next Settle, so a timer update published after a key
// press still reaches the model, in order, on the test goroutine.
package teatest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// MaxDrainDepth bounds how many chained Cmds a single Send may run.
const MaxDrainDepth = 100

// DefaultCmdTimeout separates Cmds that compute a message from Cmds that
// wait for one. Database reads and message factories finish in well under
// a millisecond.
const DefaultCmdTimeout = 10 * time.Millisecond

// DefaultAwait is how long Await keeps settling before it fails the test.
const DefaultAwait = 2 * time.Second

// Driver is a synchronous test harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg comes out of a Cmd. The runtime
	// normally swallows that message, so the model may never see it.
	Quitting bool

	cmdTimeout time.Duration
	clock      *clockwork.FakeClock
	parked     []<-chan tea.Msg
}

// Option configures the Driver during construction.
type Option func(*Driver)

// New creates a Driver for model. Call DrainInit afterwards to run the
// model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize sends an initial WindowSizeMsg before any other processing.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// WithCmdTimeout changes how long a Cmd may block before it is parked.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.cmdTimeout = timeout
	}
}

// WithClock hands the driver the fake clock behind the model's timers so
// Advance can move time and deliver the resulting updates.
func WithClock(fake *clockwork.FakeClock) Option {
	return func(d *Driver) {
		d.clock = fake
	}
}

// DrainInit executes the model's Init command and drains the results.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drainCmd(d.Model.Init(), 0)
}

// Parked reports how many Cmds are still waiting for their message.
func (d *Driver) Parked() int {
	return len(d.parked)
}

// ── Sending ──────────────────────────────────────────────────────────────────

// Send dispatches msg through Update and drains the returned Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	d.deliver(msg, 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type sends s one character at a time, the way a user types it.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// Press sends a non-rune key such as tea.KeyEnter or tea.KeyCtrlC.
func (d *Driver) Press(key tea.KeyType) {
	d.T.Helper()
	msg := tea.KeyMsg{Type: key}
	if key == tea.KeySpace {
		msg.Runes = []rune{' '}
	}
	d.Send(msg)
}

func (d *Driver) PressSpace() {
	d.T.Helper()
	d.Press(tea.KeySpace)
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Press(tea.KeyEnter)
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.Press(tea.KeyEsc)
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Press(tea.KeyCtrlC)
}

func (d *Driver) PressUp() {
	d.T.Helper()
	d.Press(tea.KeyUp)
}

func (d *Driver) PressDown() {
	d.T.Helper()
	d.Press(tea.KeyDown)
}

func (d *Driver) PressTab() {
	d.T.Helper()
	d.Press(tea.KeyTab)
}

// View returns the full rendered output of the model.
func (d *Driver) View() string {
	return d.Model.View()
}

// ── Time ─────────────────────────────────────────────────────────────────────

// Advance waits for a timer goroutine to park on the fake clock, moves
// time forward by step and settles whatever the timers published.
func (d *Driver) Advance(step time.Duration) {
	d.T.Helper()
	if d.clock == nil {
		d.T.Fatal("teatest.Driver: Advance needs WithClock")
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultAwait)
	defer cancel()
	if err := d.clock.BlockUntilContext(ctx, 1); err != nil {
		d.T.Fatalf("teatest.Driver: no timer parked on the clock: %v", err)
	}
	d.clock.Advance(step)
	d.Settle()
}

// Settle delivers the message of every parked Cmd that has one ready and
// drains what those updates return. It does not wait.
func (d *Driver) Settle() {
	d.T.Helper()
	for progressed := true; progressed && !d.Quitting; {
		progressed = false
		waiting := d.parked[:0]
		var ready []tea.Msg
		for _, ch := range d.parked {
			select {
			case msg := <-ch:
				ready = append(ready, msg)
			default:
				waiting = append(waiting, ch)
			}
		}
		d.parked = waiting
		for _, msg := range ready {
			progressed = true
			d.handle(msg, 0)
		}
	}
}

// Await settles parked Cmds until cond holds, failing the test after
// DefaultAwait. Use it for state that timers reach asynchronously.
func (d *Driver) Await(cond func() bool, msgAndArgs ...any) {
	d.T.Helper()
	deadline := time.Now().Add(DefaultAwait)
	for {
		d.Settle()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			d.T.Fatalf("teatest.Driver: condition not met within %s %s\n%s",
				DefaultAwait, fmt.Sprint(msgAndArgs...), d.View())
		}
		time.Sleep(time.Millisecond)
	}
}

// ── Draining ─────────────────────────────────────────────────────────────────

func (d *Driver) deliver(msg tea.Msg, depth int) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drainCmd(cmd, depth)
}

func (d *Driver) drainCmd(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest.Driver: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}
	if msg, ok := d.exec(cmd); ok {
		d.handle(msg, depth)
	}
}

// handle routes one Cmd result: batches fan out, a quit is recorded and
// anything else goes through Update.
func (d *Driver) handle(msg tea.Msg, depth int) {
	d.T.Helper()
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drainCmd(sub, depth+1)
		}
	case tea.QuitMsg:
		d.deliver(msg, depth+1)
		d.Quitting = true
	default:
		if isCursorBlink(msg) {
			return
		}
		d.deliver(msg, depth+1)
	}
}

// exec runs cmd on its own goroutine. A Cmd that misses the driver's
// timeout is parked and its message is delivered by a later Settle.
func (d *Driver) exec(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	timer := time.NewTimer(d.cmdTimeout)
	defer timer.Stop()
	select {
	case msg := <-ch:
		return msg, true
	case <-timer.C:
		d.parked = append(d.parked, ch)
		return nil, false
	}
}

// isCursorBlink matches the unexported blink messages of bubbles/cursor,
// which chain into Cmds that block for about half a second.
func isCursorBlink(msg tea.Msg) bool {
	t := fmt.Sprintf("%T", msg)
	return strings.Contains(t, "Blink") || strings.Contains(t, "blink")
}
