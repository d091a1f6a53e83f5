package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/timer"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type countdownKeyMap struct {
	Toggle  key.Binding
	Restart key.Binding
	Stop    key.Binding
	New     key.Binding
}

var countdownKeys = countdownKeyMap{
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "start/pause")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
}

// countdownView shows the countdown clock and forwards key presses to the
// timer service.
type countdownView struct {
	state *SharedState
	watch *watcher
	input string
}

func newCountdownView(state *SharedState) *countdownView {
	t := state.App.Timers
	return &countdownView{
		state: state,
		watch: newWatcher(state.ctx,
			signalOf(t.CountdownText()),
			signalOf(t.CountdownRunning()),
		),
	}
}

func (v *countdownView) ID() ViewID    { return ViewCountdown }
func (v *countdownView) Title() string { return "Countdown" }

func (v *countdownView) ShortHelp() []key.Binding {
	return []key.Binding{countdownKeys.Toggle, countdownKeys.Restart, countdownKeys.Stop, countdownKeys.New}
}

func (v *countdownView) Init() tea.Cmd { return v.watch.next() }

func (v *countdownView) Close() { v.watch.Close() }

func (v *countdownView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerUpdateMsg:
		if msg.w == v.watch {
			return v, v.watch.next()
		}
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *countdownView) handleKey(msg tea.KeyMsg) tea.Cmd {
	timers := v.state.App.Timers
	switch {
	case key.Matches(msg, countdownKeys.Toggle):
		switch timers.CountdownState() {
		case timer.StateRunning:
			timers.PauseCountdown()
		case timer.StatePaused:
			timers.ResumeCountdown()
		case timer.StateFinished:
			timers.RestartCountdown()
		default:
			return v.start(v.state.countdownDefault())
		}
	case key.Matches(msg, countdownKeys.Restart):
		timers.RestartCountdown()
	case key.Matches(msg, countdownKeys.Stop):
		timers.StopCountdown()
	case key.Matches(msg, countdownKeys.New):
		v.input = ""
		form := wizardCountdownDuration(v.state, &v.input)
		return startWizardCmd(v.state, wizard{
			title: "New Countdown",
			form:  form,
			note:  v.replaceNote,
			done: func() tea.Cmd {
				d, err := config.ParseDuration(v.input)
				if err != nil {
					return outputCmd(shellError(err))
				}
				return v.start(d)
			},
		})
	}
	return nil
}

// replaceNote warns that a new length replaces the active countdown.
func (v *countdownView) replaceNote() string {
	timers := v.state.App.Timers
	switch timers.CountdownState() {
	case timer.StateRunning, timer.StatePaused:
		return fmt.Sprintf("Replaces the current countdown (%s left).", timers.CountdownText().Get())
	}
	return ""
}

func (v *countdownView) start(d time.Duration) tea.Cmd {
	if err := v.state.App.Timers.StartCountdown(d); err != nil {
		return outputCmd(shellError(err))
	}
	v.state.LastDuration = d
	return nil
}

func (v *countdownView) View() string {
	timers := v.state.App.Timers
	state := timers.CountdownState()
	initial := timers.CountdownInitial()
	remaining := timers.CountdownRemaining().Get()

	var b strings.Builder
	b.WriteString("\n  " + formatter.StateBadge(state) + "\n\n")
	b.WriteString(formatter.StyleClock.Render(timers.CountdownText().Get()) + "\n\n")

	switch state {
	case timer.StateIdle:
		fmt.Fprintf(&b, "  %s\n", formatter.Dim(fmt.Sprintf(
			"Press space to count down %s, or n to choose a length.",
			domain.FormatClock(v.state.countdownDefault(), false))))
	default:
		pct := 0.0
		if initial > 0 {
			pct = float64(remaining) / float64(initial)
		}
		width := min(v.state.ContentWidth()-4, 60)
		b.WriteString("  " + formatter.RenderCountdownBar(pct, width) + "\n")
		fmt.Fprintf(&b, "  %s\n", formatter.Dim("of "+domain.FormatClock(initial, false)))
	}

	if state == timer.StateFinished {
		b.WriteString("\n  " + formatter.StyleRed.Bold(true).Render("Time's up!") + "\n")
	}
	return b.String()
}
