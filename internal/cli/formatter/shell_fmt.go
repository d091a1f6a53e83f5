package formatter

import (
	"fmt"
	"strings"
)

// helpCategory groups commands under a section header for the help display.
type helpCategory struct {
	title    string
	commands [][]string
}

func renderHelpCategory(cat helpCategory) string {
	var b strings.Builder
	b.WriteString("\n " + StyleHeader.Render(strings.ToUpper(cat.title)) + "\n")
	for _, c := range cat.commands {
		fmt.Fprintf(&b, "  %-24s %s\n", StyleGreen.Render(c[0]), StyleDim.Render(c[1]))
	}
	return b.String()
}

// FormatShellHelp renders the command bar reference.
func FormatShellHelp() string {
	categories := []helpCategory{
		{
			title: "Timers",
			commands: [][]string{
				{"countdown [duration]", "Open the countdown, starting it when a duration is given"},
				{"stopwatch", "Open the stopwatch"},
			},
		},
		{
			title: "History",
			commands: [][]string{
				{"history", "Browse recorded runs"},
				{"history list", "List recent runs (--kind, --limit)"},
				{"history show <id>", "Show one run with its laps and splits"},
				{"history remove <id>", "Delete a run"},
				{"history summary", "Totals per kind (--days)"},
			},
		},
		{
			title: "Utilities",
			commands: [][]string{
				{"help", "Show this command reference"},
				{"clear", "Dismiss command output"},
				{"exit / quit", "Quit tempo"},
			},
		},
	}

	var b strings.Builder
	for _, cat := range categories {
		b.WriteString(renderHelpCategory(cat))
	}
	b.WriteString("\n" + StyleDim.Render("Durations: 90, 90s, 1m30s, 01:30 or 1:02:03. Ctrl+N/P cycles suggestions."))

	return RenderBox("Commands", b.String())
}
