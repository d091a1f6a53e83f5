package cli

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const dashboardRecentRuns = 5

// dashboardLoadedMsg carries the recent runs shown under the timer panes.
type dashboardLoadedMsg struct {
	view *dashboardView
	runs []*domain.TimerRun
	err  error
}

func (dashboardLoadedMsg) isViewData() {}

type dashboardKeyMap struct {
	Countdown key.Binding
	Stopwatch key.Binding
	History   key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

var dashboardKeys = dashboardKeyMap{
	Countdown: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "countdown")),
	Stopwatch: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "stopwatch")),
	History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

// dashboardView is the home screen: both timers side by side and the most
// recent history below them.
type dashboardView struct {
	state  *SharedState
	watch  *watcher
	recent []*domain.TimerRun
	err    error
}

func newDashboardView(state *SharedState) *dashboardView {
	t := state.App.Timers
	return &dashboardView{
		state: state,
		watch: newWatcher(state.ctx,
			signalOf(t.CountdownText()),
			signalOf(t.CountdownRunning()),
			signalOf(t.StopwatchText()),
			signalOf(t.StopwatchRunning()),
		),
	}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Dashboard" }

func (v *dashboardView) ShortHelp() []key.Binding {
	return []key.Binding{dashboardKeys.Countdown, dashboardKeys.Stopwatch, dashboardKeys.History, dashboardKeys.Refresh, dashboardKeys.Quit}
}

func (v *dashboardView) Init() tea.Cmd {
	return tea.Batch(v.loadRecent(), v.watch.next())
}

func (v *dashboardView) Close() { v.watch.Close() }

func (v *dashboardView) loadRecent() tea.Cmd {
	runs := v.state.App.Runs
	if runs == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := runs.ListRecent(context.Background(), "", dashboardRecentRuns)
		return dashboardLoadedMsg{view: v, runs: list, err: err}
	}
}

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.view == v {
			v.recent, v.err = msg.runs, msg.err
		}
	case refreshViewMsg:
		return v, v.loadRecent()
	case timerUpdateMsg:
		if msg.w == v.watch {
			return v, v.watch.next()
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dashboardKeys.Countdown):
			return v, openView(ViewCountdown, func() View { return newCountdownView(v.state) })
		case key.Matches(msg, dashboardKeys.Stopwatch):
			return v, openView(ViewStopwatch, func() View { return newStopwatchView(v.state) })
		case key.Matches(msg, dashboardKeys.History):
			return v, openView(ViewHistory, func() View { return newHistoryView(v.state) })
		case key.Matches(msg, dashboardKeys.Refresh):
			return v, v.loadRecent()
		}
	}
	return v, nil
}

func (v *dashboardView) View() string {
	timers := v.state.App.Timers
	paneWidth := max((v.state.ContentWidth()-6)/2, 24)
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(formatter.ColorDim).
		Padding(0, 1).
		Width(paneWidth)

	countdown := formatter.StyleHeader.Render("COUNTDOWN") + "  " + formatter.StateBadge(timers.CountdownState()) + "\n\n" +
		formatter.StyleClock.Render(timers.CountdownText().Get()) + "\n\n" +
		formatter.Dim("c to open")
	stopwatch := formatter.StyleHeader.Render("STOPWATCH") + "  " + formatter.StateBadge(timers.StopwatchState()) + "\n\n" +
		formatter.StyleClock.Render(timers.StopwatchText().Get()) + "\n\n" +
		formatter.Dim("w to open")

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pane.Render(countdown), "  ", pane.Render(stopwatch)))
	b.WriteString("\n\n")
	b.WriteString(v.renderRecent())
	return b.String()
}

func (v *dashboardView) renderRecent() string {
	switch {
	case v.state.App.Runs == nil:
		return "  " + formatter.Dim("History is disabled.")
	case v.err != nil:
		return "  " + shellError(v.err)
	case len(v.recent) == 0:
		return "  " + formatter.Dim("No runs recorded yet.")
	}
	return formatter.Header("Recent") + "\n" + formatter.FormatRunTable(v.recent, time.Now())
}
