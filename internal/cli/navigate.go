package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack.
type popViewMsg struct{}

// replaceViewMsg replaces the current top view with a new one.
type replaceViewMsg struct {
	view View
}

// openViewMsg brings the view with the given ID to the top: the stack is
// unwound to an existing instance, or build() is pushed when none exists.
type openViewMsg struct {
	id    ViewID
	build func() View
}

// refreshViewMsg asks every view on the stack to reload its data.
type refreshViewMsg struct{}

// viewDataMsg is implemented by messages that carry data loaded for one
// view instance. The owning view recognizes its own messages.
type viewDataMsg interface {
	isViewData()
}

// cmdOutputMsg carries text output from a command execution
// to be displayed transiently in the current view.
type cmdOutputMsg struct {
	output string
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel pops the wizard view, then runs nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func openView(id ViewID, build func() View) tea.Cmd {
	return func() tea.Msg { return openViewMsg{id: id, build: build} }
}

func refreshViews() tea.Msg { return refreshViewMsg{} }

// wizardCompleteOutput returns a wizardCompleteMsg that displays a message string.
func wizardCompleteOutput(msg string) tea.Msg {
	return wizardCompleteMsg{nextCmd: outputCmd(msg)}
}
