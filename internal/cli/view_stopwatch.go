package cli

import (
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/timer"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type stopwatchKeyMap struct {
	Toggle key.Binding
	Lap    key.Binding
	Split  key.Binding
	Stop   key.Binding
	Reset  key.Binding
}

var stopwatchKeys = stopwatchKeyMap{
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "start/pause")),
	Lap:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lap")),
	Split:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "split")),
	Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop & save")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
}

// stopwatchHeaderLines is the badge and clock block above the lap table.
const stopwatchHeaderLines = 5

// stopwatchView shows elapsed time with a scrolling lap and split table.
type stopwatchView struct {
	state *SharedState
	watch *watcher
	marks viewport.Model
}

func newStopwatchView(state *SharedState) *stopwatchView {
	t := state.App.Timers
	v := &stopwatchView{
		state: state,
		watch: newWatcher(state.ctx,
			signalOf(t.StopwatchText()),
			signalOf(t.StopwatchRunning()),
			signalOf(t.Laps()),
			signalOf(t.Splits()),
		),
		marks: viewport.New(0, 0),
	}
	v.syncMarks()
	return v
}

func (v *stopwatchView) ID() ViewID    { return ViewStopwatch }
func (v *stopwatchView) Title() string { return "Stopwatch" }

func (v *stopwatchView) ShortHelp() []key.Binding {
	return []key.Binding{stopwatchKeys.Toggle, stopwatchKeys.Lap, stopwatchKeys.Split, stopwatchKeys.Stop, stopwatchKeys.Reset}
}

func (v *stopwatchView) Init() tea.Cmd { return v.watch.next() }

func (v *stopwatchView) Close() { v.watch.Close() }

func (v *stopwatchView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.syncMarks()
	case timerUpdateMsg:
		if msg.w == v.watch {
			v.syncMarks()
			return v, v.watch.next()
		}
	case tea.KeyMsg:
		v.handleKey(msg)
		v.syncMarks()
	}
	return v, nil
}

func (v *stopwatchView) handleKey(msg tea.KeyMsg) {
	timers := v.state.App.Timers
	switch {
	case key.Matches(msg, stopwatchKeys.Toggle):
		if timers.StopwatchState() == timer.StateRunning {
			timers.PauseStopwatch()
		} else {
			timers.StartStopwatch()
		}
	case key.Matches(msg, stopwatchKeys.Lap):
		timers.LapStopwatch()
	case key.Matches(msg, stopwatchKeys.Split):
		timers.RecordSplit()
	case key.Matches(msg, stopwatchKeys.Stop):
		timers.StopStopwatch()
	case key.Matches(msg, stopwatchKeys.Reset):
		timers.ResetStopwatch()
	}
}

// syncMarks refreshes the lap table and keeps the newest row in view.
func (v *stopwatchView) syncMarks() {
	timers := v.state.App.Timers
	v.marks.Width = v.state.ContentWidth()
	v.marks.Height = max(v.state.ContentHeight()-stopwatchHeaderLines, 3)
	v.marks.SetContent(formatter.FormatLapTable(timers.Laps().Get(), timers.Splits().Get()))
	v.marks.GotoBottom()
}

func (v *stopwatchView) View() string {
	timers := v.state.App.Timers

	var b strings.Builder
	b.WriteString("\n  " + formatter.StateBadge(timers.StopwatchState()) + "\n\n")
	b.WriteString(formatter.StyleClock.Render(timers.StopwatchText().Get()) + "\n\n")
	b.WriteString(v.marks.View())
	return b.String()
}
