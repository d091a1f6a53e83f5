package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const historyViewLimit = 100

// historyLoadedMsg carries runs loaded for the history view.
type historyLoadedMsg struct {
	view *historyView
	runs []*domain.TimerRun
	err  error
}

func (historyLoadedMsg) isViewData() {}

type historyKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Delete  key.Binding
	Filter  key.Binding
	Refresh key.Binding
}

var historyKeys = historyKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

// historyView lists recorded runs with a cursor.
type historyView struct {
	state   *SharedState
	runs    []*domain.TimerRun
	kind    domain.TimerKind
	cursor  int
	loading bool
	err     error
	confirm bool
}

func newHistoryView(state *SharedState) *historyView {
	return &historyView{state: state, loading: true}
}

func (v *historyView) ID() ViewID { return ViewHistory }

func (v *historyView) Title() string {
	if v.kind != "" {
		return "History (" + string(v.kind) + ")"
	}
	return "History"
}

func (v *historyView) ShortHelp() []key.Binding {
	return []key.Binding{historyKeys.Up, historyKeys.Down, historyKeys.Open, historyKeys.Delete, historyKeys.Filter, historyKeys.Refresh}
}

func (v *historyView) Init() tea.Cmd { return v.load() }

func (v *historyView) load() tea.Cmd {
	runs := v.state.App.Runs
	if runs == nil {
		v.loading = false
		return nil
	}
	kind := v.kind
	return func() tea.Msg {
		list, err := runs.ListRecent(context.Background(), kind, historyViewLimit)
		return historyLoadedMsg{view: v, runs: list, err: err}
	}
}

func (v *historyView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.view != v {
			return v, nil
		}
		v.loading = false
		v.runs, v.err = msg.runs, msg.err
		v.cursor = min(v.cursor, max(len(v.runs)-1, 0))
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *historyView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, historyKeys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, historyKeys.Down):
		if v.cursor < len(v.runs)-1 {
			v.cursor++
		}
	case key.Matches(msg, historyKeys.Open):
		if run := v.selected(); run != nil {
			return outputCmd(formatter.RenderBox("Run", formatter.FormatRunDetail(run)))
		}
	case key.Matches(msg, historyKeys.Delete):
		return v.confirmDelete()
	case key.Matches(msg, historyKeys.Filter):
		v.kind = nextKindFilter(v.kind)
		v.cursor = 0
		v.loading = true
		return v.load()
	case key.Matches(msg, historyKeys.Refresh):
		return v.load()
	}
	return nil
}

func (v *historyView) selected() *domain.TimerRun {
	if v.cursor < 0 || v.cursor >= len(v.runs) {
		return nil
	}
	return v.runs[v.cursor]
}

func (v *historyView) confirmDelete() tea.Cmd {
	run := v.selected()
	if run == nil {
		return nil
	}
	v.confirm = false
	form := wizardConfirm(fmt.Sprintf("Delete %s run %s?", run.Kind, run.ID[:min(8, len(run.ID))]), &v.confirm)
	runs := v.state.App.Runs
	return startWizardCmd(v.state, wizard{
		title: "Delete Run",
		form:  form,
		note: func() string {
			return fmt.Sprintf("%s, %s, started %s", formatter.Outcome(run), domain.FormatClock(run.Elapsed, run.Kind == domain.KindStopwatch), formatter.HumanTimestamp(run.StartedAt))
		},
		done: func() tea.Cmd {
			if !v.confirm {
				return outputCmd(formatter.Dim("Kept."))
			}
			if err := runs.Delete(context.Background(), run.ID); err != nil {
				return outputCmd(shellError(err))
			}
			return outputCmd(formatter.StyleGreen.Render("✔") + " Deleted run " + formatter.TruncID(run.ID))
		},
	})
}

// nextKindFilter cycles all → countdown → stopwatch → all.
func nextKindFilter(k domain.TimerKind) domain.TimerKind {
	switch k {
	case "":
		return domain.KindCountdown
	case domain.KindCountdown:
		return domain.KindStopwatch
	default:
		return ""
	}
}

func (v *historyView) View() string {
	if v.state.App.Runs == nil {
		return "\n  " + formatter.Dim("History is disabled. Set history: true in the config file to record runs.")
	}
	if v.loading {
		return "\n  " + formatter.Dim("Loading...")
	}
	if v.err != nil {
		return "\n  " + shellError(v.err)
	}
	if len(v.runs) == 0 {
		return "\n  " + formatter.Dim("No runs recorded yet.")
	}

	table := formatter.FormatRunTable(v.runs, time.Now())
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")

	// Header and rule stay pinned; rows scroll to keep the cursor visible.
	rows := lines[2:]
	visible := max(v.state.ContentHeight()-3, 1)
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	var b strings.Builder
	b.WriteString("\n    " + lines[0] + "\n    " + lines[1] + "\n")
	for i := start; i < end; i++ {
		marker := "  "
		if i == v.cursor {
			marker = formatter.StyleHeader.Render("▸ ")
		}
		b.WriteString("  " + marker + rows[i] + "\n")
	}
	return b.String()
}
