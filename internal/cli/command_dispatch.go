package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

// quitMsg signals the app to quit.
type quitMsg struct{}

// executeCommand dispatches a command bar line. Commands return output,
// navigation messages, or quitMsg.
func (c *commandBar) executeCommand(input string) tea.Cmd {
	parts, err := splitShellArgs(input)
	if err != nil {
		return outputCmd(shellError(err))
	}
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "countdown", "cd":
		return c.cmdCountdown(args)
	case "stopwatch", "sw":
		c.Blur()
		return openView(ViewStopwatch, func() View { return newStopwatchView(c.state) })
	case "history":
		if len(args) == 0 {
			c.Blur()
			return openView(ViewHistory, func() View { return newHistoryView(c.state) })
		}
		app := c.state.App
		line := append([]string{cmd}, args...)
		return tea.Batch(
			asyncOutputCmd(func() string { return captureCobraOutput(app, line) }),
			refreshViews,
		)
	case "help":
		return outputCmd(formatter.FormatShellHelp())
	case "clear":
		return nil
	case "exit", "quit":
		return func() tea.Msg { return quitMsg{} }
	default:
		return outputCmd(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", cmd))
	}
}

// cmdCountdown opens the countdown view, starting a new countdown when a
// duration is given.
func (c *commandBar) cmdCountdown(args []string) tea.Cmd {
	if len(args) > 0 {
		d, err := config.ParseDuration(strings.Join(args, ""))
		if err != nil {
			return outputCmd(shellError(err))
		}
		if err := c.state.App.Timers.StartCountdown(d); err != nil {
			return outputCmd(shellError(err))
		}
		c.state.LastDuration = d
	}
	c.Blur()
	return openView(ViewCountdown, func() View { return newCountdownView(c.state) })
}

// shellError formats an error for display in the content area.
func shellError(err error) string {
	return formatter.StyleRed.Render("Error: ") + err.Error()
}

// outputCmd returns a tea.Cmd that sends a cmdOutputMsg.
func outputCmd(s string) tea.Cmd {
	if s == "" {
		return nil
	}
	return func() tea.Msg { return cmdOutputMsg{output: s} }
}

// asyncOutputCmd runs fn off the update loop and delivers its result as a
// cmdOutputMsg.
func asyncOutputCmd(fn func() string) tea.Cmd {
	return func() tea.Msg {
		result := fn()
		if result == "" {
			return nil
		}
		return cmdOutputMsg{output: result}
	}
}
