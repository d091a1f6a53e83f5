package cli

import (
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// wizard describes one huh form shown on the view stack.
type wizard struct {
	title string
	form  *huh.Form
	// note renders under the form on every frame, so it can follow a
	// running timer. Optional.
	note func() string
	// done runs after the form completes; its command follows the pop.
	done func() tea.Cmd
}

// wizardView wraps a huh.Form as a View. Completion and Esc both send a
// wizardCompleteMsg, which pops the view.
type wizardView struct {
	state *SharedState
	wizard
}

func newWizardView(state *SharedState, w wizard) *wizardView {
	w.form = w.form.WithWidth(min(state.ContentWidth(), 60))
	return &wizardView{state: state, wizard: w}
}

func (v *wizardView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *wizardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return v, func() tea.Msg { return wizardCompleteOutput(formatter.Dim("Cancelled.")) }
		}
	case tea.WindowSizeMsg:
		v.form = v.form.WithWidth(min(v.state.ContentWidth(), 60))
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State != huh.StateCompleted {
		return v, cmd
	}

	var doneCmd tea.Cmd
	if v.done != nil {
		doneCmd = v.done()
	}
	return v, func() tea.Msg {
		return wizardCompleteMsg{nextCmd: tea.Batch(cmd, doneCmd)}
	}
}

func (v *wizardView) View() string {
	out := v.form.View()
	if v.note != nil {
		if note := v.note(); note != "" {
			out += "\n\n" + formatter.Dim(note)
		}
	}
	return out
}

func (v *wizardView) ID() ViewID    { return ViewForm }
func (v *wizardView) Title() string { return v.title }
func (v *wizardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// startWizardCmd pushes the wizard, or runs done directly when there is no
// form to show.
func startWizardCmd(state *SharedState, w wizard) tea.Cmd {
	if w.form == nil {
		if w.done != nil {
			return w.done()
		}
		return nil
	}
	return pushView(newWizardView(state, w))
}
