package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings shared by every command.
type App struct {
	Timers *service.TimerService
	// Runs is nil when history is disabled.
	Runs   service.RunService
	Config config.Config
	Logger *slog.Logger

	// IsInteractive reports whether the full-screen TUI can be used.
	IsInteractive func() bool
	// Bell receives the terminal bell when a countdown finishes.
	Bell io.Writer
	// HistoryFile stores command bar history. Empty disables it.
	HistoryFile string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) ring() {
	if a.Config.Bell && a.Bell != nil {
		_, _ = io.WriteString(a.Bell, "\a")
	}
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "tempo",
		Short: "Countdown timer and stopwatch for the terminal",
		Long: heredoc.Doc(`
			tempo runs a countdown timer and a stopwatch side by side.

			Without a subcommand it opens the full-screen dashboard.
			Finished countdowns and stopped stopwatches are kept in a local
			history that the history command can list and summarize.
		`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runTUI(commandContext(cmd), app, ViewDashboard)
		},
	}

	// Read by main before the App is built; registered here so cobra accepts it.
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.tempo/config.yaml)")

	root.AddCommand(
		newCountdownCmd(app),
		newStopwatchCmd(app),
		newHistoryCmd(app),
	)

	return root
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
