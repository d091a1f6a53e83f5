package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("history is disabled (set history: true in the config file)")

func (a *App) runs() (service.RunService, error) {
	if a.Runs == nil {
		return nil, errHistoryDisabled
	}
	return a.Runs, nil
}

func newHistoryCmd(app *App) *cobra.Command {
	list := newHistoryListCmd(app)

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h", "runs"},
		Short:   "Inspect finished countdowns and stopwatch runs",
		Example: heredoc.Doc(`
			tempo history
			tempo history list --kind stopwatch --limit 5
			tempo history show 3f9a2c1d
			tempo history summary --days 30
		`),
		Args: cobra.NoArgs,
		RunE: list.RunE,
	}
	// The bare command lists, so it accepts the list flags too.
	cmd.Flags().AddFlagSet(list.Flags())

	cmd.AddCommand(
		list,
		newHistoryShowCmd(app),
		newHistoryRemoveCmd(app),
		newHistorySummaryCmd(app),
	)

	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.runs()
			if err != nil {
				return err
			}

			var filter domain.TimerKind
			if kind != "" {
				k, ok := domain.ParseTimerKind(kind)
				if !ok {
					return fmt.Errorf("unknown kind %q (countdown or stopwatch)", kind)
				}
				filter = k
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			list, err := runs.ListRecent(commandContext(cmd), filter, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			fmt.Fprint(out, formatter.RenderBox("History", formatter.FormatRunTable(list, time.Now())))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only show countdown or stopwatch runs")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs (0 for all)")

	return cmd
}

func newHistoryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one run with its laps and splits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.runs()
			if err != nil {
				return err
			}
			run, err := runs.Get(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Run", formatter.FormatRunDetail(run)))
			return nil
		},
	}
}

func newHistoryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a run from history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.runs()
			if err != nil {
				return err
			}
			if err := runs.Delete(commandContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s\n", args[0])
			return nil
		},
	}
}

func newHistorySummaryCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals per timer kind over recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.runs()
			if err != nil {
				return err
			}
			sums, err := runs.Summary(commandContext(cmd), days)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox(fmt.Sprintf("Last %d days", days), formatter.FormatSummary(sums, days)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of recent days to include")

	return cmd
}
