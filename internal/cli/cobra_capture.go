package cli

import (
	"fmt"
	"strings"
)

// captureCobraOutput runs args through a fresh command tree and returns
// what it printed, so command bar input can reuse the CLI subcommands.
// Commands that take over the terminal are refused.
func captureCobraOutput(app *App, args []string) string {
	if len(args) > 0 {
		switch args[0] {
		case "countdown", "cd", "timer", "stopwatch", "sw":
			return shellError(fmt.Errorf("%s cannot run inside the dashboard", args[0]))
		}
	}

	var buf strings.Builder
	root := NewRootCmd(app)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		buf.WriteString(shellError(err))
	}
	return buf.String()
}
