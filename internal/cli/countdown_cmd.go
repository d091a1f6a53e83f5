package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newCountdownCmd(app *App) *cobra.Command {
	var (
		length time.Duration
		plain  bool
	)

	cmd := &cobra.Command{
		Use:     "countdown [DURATION]",
		Aliases: []string{"cd", "timer"},
		Short:   "Count a duration down to zero",
		Example: heredoc.Doc(`
			tempo countdown 25m
			tempo countdown 01:30
			tempo countdown --plain 90 > timer.log
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := length
			if len(args) == 1 {
				parsed, err := config.ParseDuration(args[0])
				if err != nil {
					return err
				}
				d = parsed
			}
			if d <= 0 {
				d = app.Config.DefaultCountdown
			}

			ctx := commandContext(cmd)
			if plain || !app.interactive() {
				return runCountdownLines(ctx, app, cmd.OutOrStdout(), d)
			}
			if err := app.Timers.StartCountdown(d); err != nil {
				return err
			}
			return runTUI(ctx, app, ViewCountdown)
		},
	}

	cmd.Flags().VarP(newClockValue(0, &length), "duration", "d", "Countdown length when no argument is given (default from config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print one line per second instead of opening the TUI")

	return cmd
}

// runCountdownLines prints the remaining time each time it changes until
// the countdown finishes or ctx is cancelled. A cancelled countdown is
// stopped, which records it as incomplete.
func runCountdownLines(ctx context.Context, app *App, out io.Writer, d time.Duration) error {
	timers := app.Timers
	sub, cancel := context.WithCancel(ctx)
	defer cancel()

	finished := timers.CountdownFinished()
	base := finished.Get()
	done := finished.Subscribe(sub)

	if err := timers.StartCountdown(d); err != nil {
		return err
	}
	texts := timers.CountdownText().Subscribe(sub)

	last := ""
	emit := func(s string) {
		if s != last {
			fmt.Fprintln(out, s)
			last = s
		}
	}
	emit(domain.FormatClock(d, false))

	for {
		select {
		case <-ctx.Done():
			left := timers.CountdownRemaining().Get()
			timers.StopCountdown()
			fmt.Fprintf(out, "stopped with %s left\n", domain.FormatClock(left, false))
			return nil

		case s, ok := <-texts:
			if !ok {
				texts = nil
				continue
			}
			// Zero is printed once, on completion.
			if s != domain.FormatClock(0, false) {
				emit(s)
			}

		case n, ok := <-done:
			if !ok {
				done = nil
				continue
			}
			if n > base {
				emit(domain.FormatClock(0, false))
				fmt.Fprintln(out, formatter.StyleRed.Render("time's up"))
				app.ring()
				return nil
			}
		}
	}
}
