package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newStopwatchCmd(app *App) *cobra.Command {
	var (
		limit time.Duration
		plain bool
	)

	cmd := &cobra.Command{
		Use:     "stopwatch",
		Aliases: []string{"sw"},
		Short:   "Measure elapsed time with laps and splits",
		Long: heredoc.Doc(`
			Starts the stopwatch. In the TUI use space to pause, l for a lap
			and s for a split.

			With --plain (or when stdin is not a terminal) commands are read
			one per line: an empty line or "lap" records a lap, "split" a
			split, "pause" and "resume" toggle, "reset" clears, and "stop"
			saves the run. End of input stops the stopwatch unless --for is
			set.
		`),
		Example: heredoc.Doc(`
			tempo stopwatch
			tempo stopwatch --plain
			tempo stopwatch --plain --for 2m < /dev/null
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if plain || limit > 0 || !app.interactive() {
				return runStopwatchLines(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout(), limit)
			}
			app.Timers.StartStopwatch()
			return runTUI(ctx, app, ViewStopwatch)
		},
	}

	cmd.Flags().Var(newClockValue(0, &limit), "for", "Stop automatically after this much elapsed time")
	cmd.Flags().BoolVar(&plain, "plain", false, "Read commands from stdin instead of opening the TUI")

	return cmd
}

// runStopwatchLines drives the stopwatch from line commands on in. It
// returns after a stop command, when limit has elapsed, or when ctx ends.
func runStopwatchLines(ctx context.Context, app *App, in io.Reader, out io.Writer, limit time.Duration) error {
	timers := app.Timers
	sub, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-sub.Done():
				return
			}
		}
	}()

	var elapsed <-chan time.Duration
	if limit > 0 {
		elapsed = timers.StopwatchElapsed().Subscribe(sub)
	}

	stop := func() {
		total := timers.StopwatchNow()
		laps := len(timers.Laps().Get())
		splits := len(timers.Splits().Get())
		timers.StopStopwatch()
		fmt.Fprintf(out, "stopped at %s (%d laps, %d splits)\n", domain.FormatClock(total, true), laps, splits)
	}

	timers.StartStopwatch()
	fmt.Fprintln(out, "running")

	for {
		select {
		case <-ctx.Done():
			stop()
			return nil

		case d, ok := <-elapsed:
			if !ok {
				elapsed = nil
				continue
			}
			if d >= limit {
				stop()
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				if limit <= 0 {
					stop()
					return nil
				}
				continue
			}
			if done := handleStopwatchLine(app, out, strings.TrimSpace(line), stop); done {
				return nil
			}
		}
	}
}

// handleStopwatchLine applies one line command and reports whether the
// stopwatch was stopped.
func handleStopwatchLine(app *App, out io.Writer, line string, stop func()) bool {
	timers := app.Timers
	switch strings.ToLower(line) {
	case "", "lap", "l":
		before := len(timers.Laps().Get())
		timers.LapStopwatch()
		laps := timers.Laps().Get()
		if len(laps) > before {
			fmt.Fprintf(out, "lap %d  %s\n", len(laps), domain.FormatClock(laps[len(laps)-1], true))
		}
	case "split", "s":
		before := len(timers.Splits().Get())
		timers.RecordSplit()
		splits := timers.Splits().Get()
		if len(splits) > before {
			fmt.Fprintf(out, "split %d  %s\n", len(splits), domain.FormatClock(splits[len(splits)-1], true))
		}
	case "pause", "p":
		timers.PauseStopwatch()
		fmt.Fprintf(out, "paused at %s\n", domain.FormatClock(timers.StopwatchNow(), true))
	case "start", "resume":
		timers.StartStopwatch()
		fmt.Fprintln(out, "running")
	case "reset":
		timers.ResetStopwatch()
		fmt.Fprintln(out, "reset")
	case "stop", "q", "quit":
		stop()
		return true
	default:
		fmt.Fprintf(out, "unknown command %q (lap, split, pause, resume, reset, stop)\n", line)
	}
	return false
}
