package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tempo/internal/cli"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(configFlag(os.Args[1:]))
	if err != nil {
		return err
	}
	logger := service.NewLogger(os.Stderr, cfg.LogLevel)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// History is optional; without it timers still run but nothing is kept.
	var runs service.RunService
	if cfg.History {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		runs = service.NewRunService(
			repository.NewSQLiteRunRepo(database),
			db.NewSQLiteUnitOfWork(database),
			observers...,
		)
	}

	// The timers outlive the signal: an interrupted command still stops
	// and records its run before Close ends them.
	timers := service.NewTimerService(context.WithoutCancel(ctx), runs, service.TimerServiceOptions{
		CountdownTick: cfg.CountdownTick,
		StopwatchTick: cfg.StopwatchTick,
		Logger:        logger,
	}, observers...)
	defer timers.Close()

	app := &cli.App{
		Timers: timers,
		Runs:   runs,
		Config: cfg,
		Logger: logger,
		IsInteractive: func() bool {
			in, out := os.Stdin.Fd(), os.Stdout.Fd()
			return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
				(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
		},
		Bell:        os.Stderr,
		HistoryFile: cli.DefaultHistoryFile(),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// configFlag pulls --config out of args before the command tree exists,
// since the config decides how the App is wired.
func configFlag(args []string) string {
	fs := pflag.NewFlagSet("tempo", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}
