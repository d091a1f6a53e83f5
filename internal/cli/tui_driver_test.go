package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/teatest"
	"github.com/stretchr/testify/assert"
)

// TestDriver wraps teatest.Driver with access to appModel internals the
// generic driver can't see: the view stack, shared state and command bar.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver builds the app model on home, sizes the terminal and
// drains Init, which loads history synchronously from in-memory SQLite.
// Extra options, such as teatest.WithClock, follow the defaults.
func NewTestDriver(t *testing.T, app *App, home ViewID, opts ...teatest.Option) *TestDriver {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := newAppModel(ctx, app, home)
	d := teatest.New(t, m, append([]teatest.Option{
		teatest.WithSize(120, 40),
		// Watchers park until a timer publishes, which costs one timeout
		// per drain; history loads must still fit comfortably.
		teatest.WithCmdTimeout(20 * time.Millisecond),
	}, opts...)...)
	d.DrainInit()

	td := &TestDriver{Driver: d}
	t.Cleanup(func() {
		m := td.appModel()
		m.close()
	})
	return td
}

// Command focuses the command bar, types input and presses Enter. The bar
// is blurred afterwards so later keys reach the active view.
func (d *TestDriver) Command(input string) {
	d.T.Helper()
	d.PressKey(':')
	d.Type(input)
	d.PressEnter()
	if d.CmdBarFocused() {
		d.PressEsc()
	}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ViewStackIDs returns the ViewIDs on the stack, bottom to top.
func (d *TestDriver) ViewStackIDs() []ViewID {
	m := d.appModel()
	ids := make([]ViewID, len(m.viewStack))
	for i, v := range m.viewStack {
		ids[i] = v.ID()
	}
	return ids
}

func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// IsQuitting reports whether the model or the driver saw a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

func (d *TestDriver) CmdBarFocused() bool {
	m := d.appModel()
	return m.cmdBar.Focused()
}

func (d *TestDriver) LastOutput() string {
	return d.appModel().lastOutput
}

// EventuallyShows waits until the rendered screen contains want. Timer
// text is derived asynchronously, so screens catch up a moment later.
func (d *TestDriver) EventuallyShows(want string) {
	d.T.Helper()
	assert.Eventually(d.T, func() bool {
		return strings.Contains(stripANSI(d.View()), want)
	}, waitFor, time.Millisecond, "screen never showed %q:\n%s", want, stripANSI(d.View()))
}
