package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/observe"
	"github.com/alexanderramin/tempo/internal/timer"
)

// TimerServiceOptions configures a TimerService. Zero values pick defaults.
type TimerServiceOptions struct {
	Clock         clock.Clock
	CountdownTick time.Duration
	StopwatchTick time.Duration
	Logger        *slog.Logger
	// Now stamps history records. Defaults to time.Now.
	Now func() time.Time
}

// TimerService owns one countdown and one stopwatch for the life of a
// session. It forwards user intents to the engines, exposes display-ready
// text streams, and records finished runs through a RunService.
type TimerService struct {
	scope  context.Context
	cancel context.CancelFunc

	countdown *timer.CountdownTimer
	stopwatch *timer.Stopwatch

	runs     RunService
	logger   *slog.Logger
	observer UseCaseObserver
	now      func() time.Time

	countdownText observe.Observable[string]
	stopwatchText observe.Observable[string]
	finished      *observe.State[int]

	mu               sync.Mutex
	countdownStarted time.Time
	stopwatchStarted time.Time
}

// NewTimerService builds the engines under ctx. runs may be nil, in which
// case nothing is recorded.
func NewTimerService(ctx context.Context, runs RunService, opts TimerServiceOptions, observers ...UseCaseObserver) *TimerService {
	scope, cancel := context.WithCancel(ctx)
	if opts.Logger == nil {
		opts.Logger = DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	common := []timer.Option{timer.WithLogger(opts.Logger)}
	if opts.Clock != nil {
		common = append(common, timer.WithClock(opts.Clock))
	}

	s := &TimerService{
		scope:    scope,
		cancel:   cancel,
		runs:     runs,
		logger:   opts.Logger,
		observer: useCaseObserverOrNoop(observers),
		now:      opts.Now,
		finished: observe.New(0),
	}
	s.countdown = timer.NewCountdownTimer(scope, append(common, timer.WithTickInterval(opts.CountdownTick))...)
	s.stopwatch = timer.NewStopwatch(scope, append(common, timer.WithTickInterval(opts.StopwatchTick))...)
	s.countdown.OnFinish(s.countdownFinished)

	s.countdownText = observe.Map(scope, s.countdown.Remaining(), func(d time.Duration) string {
		return domain.FormatClock(d, false)
	})
	s.stopwatchText = observe.Map(scope, s.stopwatch.Elapsed(), func(d time.Duration) string {
		return domain.FormatClock(d, true)
	})
	return s
}

// CountdownText publishes the remaining time as MM:SS.
func (s *TimerService) CountdownText() observe.Observable[string] { return s.countdownText }

// StopwatchText publishes the elapsed time as MM:SS.mmm.
func (s *TimerService) StopwatchText() observe.Observable[string] { return s.stopwatchText }

func (s *TimerService) CountdownRemaining() observe.Observable[time.Duration] {
	return s.countdown.Remaining()
}

func (s *TimerService) CountdownRunning() observe.Observable[bool] { return s.countdown.Running() }

// CountdownFinished counts natural completions since the service started.
func (s *TimerService) CountdownFinished() observe.Observable[int] { return s.finished }

func (s *TimerService) CountdownState() timer.State { return s.countdown.State() }

func (s *TimerService) CountdownInitial() time.Duration { return s.countdown.InitialDuration() }

func (s *TimerService) StopwatchElapsed() observe.Observable[time.Duration] {
	return s.stopwatch.Elapsed()
}

func (s *TimerService) StopwatchRunning() observe.Observable[bool] { return s.stopwatch.Running() }

// StopwatchNow reads the exact elapsed time without waiting for a tick.
func (s *TimerService) StopwatchNow() time.Duration { return s.stopwatch.Now() }

func (s *TimerService) Laps() observe.Observable[[]time.Duration] { return s.stopwatch.Laps() }

func (s *TimerService) Splits() observe.Observable[[]time.Duration] { return s.stopwatch.Splits() }

func (s *TimerService) StopwatchState() timer.State { return s.stopwatch.State() }

// StartCountdown replaces any countdown in progress with one of length d.
func (s *TimerService) StartCountdown(d time.Duration) error {
	startedAt := time.Now()
	err := s.countdown.Start(d)
	if err == nil {
		s.mu.Lock()
		s.countdownStarted = s.now()
		s.mu.Unlock()
	}
	observeUseCase(s.scope, s.observer, "countdown-start", startedAt, map[string]any{"duration": d.String()}, err)
	return err
}

func (s *TimerService) PauseCountdown() {
	s.track("countdown-pause", s.countdown.Pause)
}

func (s *TimerService) ResumeCountdown() {
	s.track("countdown-resume", s.countdown.Resume)
}

// StopCountdown cancels the countdown. A countdown stopped after it has
// made progress is recorded as incomplete.
func (s *TimerService) StopCountdown() {
	s.track("countdown-stop", func() {
		snap := s.countdown.Stop()
		if snap.State != timer.StateRunning && snap.State != timer.StatePaused {
			return
		}
		if elapsed := snap.Initial - snap.Remaining; elapsed > 0 {
			s.record(&domain.TimerRun{
				Kind:      domain.KindCountdown,
				StartedAt: s.startedAt(&s.countdownStarted),
				Planned:   snap.Initial,
				Elapsed:   elapsed,
				Completed: false,
			})
		}
	})
}

func (s *TimerService) RestartCountdown() {
	s.track("countdown-restart", func() {
		if s.countdown.InitialDuration() > 0 {
			s.mu.Lock()
			s.countdownStarted = s.now()
			s.mu.Unlock()
		}
		s.countdown.Restart()
	})
}

func (s *TimerService) StartStopwatch() {
	s.track("stopwatch-start", func() {
		if s.stopwatch.State() == timer.StateIdle {
			s.mu.Lock()
			s.stopwatchStarted = s.now()
			s.mu.Unlock()
		}
		s.stopwatch.Start()
	})
}

func (s *TimerService) PauseStopwatch() {
	s.track("stopwatch-pause", s.stopwatch.Pause)
}

// StopStopwatch clears the stopwatch and records the run if any time
// elapsed.
func (s *TimerService) StopStopwatch() {
	s.track("stopwatch-stop", func() {
		elapsed := s.stopwatch.Now()
		laps := s.stopwatch.Laps().Get()
		splits := s.stopwatch.Splits().Get()
		s.stopwatch.Stop()

		if elapsed <= 0 {
			return
		}
		s.record(&domain.TimerRun{
			Kind:      domain.KindStopwatch,
			StartedAt: s.startedAt(&s.stopwatchStarted),
			Elapsed:   elapsed,
			Completed: true,
			Marks:     domain.NewStopwatchMarks(laps, splits),
		})
	})
}

func (s *TimerService) LapStopwatch() {
	s.track("stopwatch-lap", s.stopwatch.Lap)
}

func (s *TimerService) RecordSplit() {
	s.track("stopwatch-split", s.stopwatch.Split)
}

// ResetStopwatch discards the current run without recording it.
func (s *TimerService) ResetStopwatch() {
	s.track("stopwatch-reset", func() {
		running := s.stopwatch.Running().Get()
		s.stopwatch.Reset()
		s.mu.Lock()
		if running {
			s.stopwatchStarted = s.now()
		} else {
			s.stopwatchStarted = time.Time{}
		}
		s.mu.Unlock()
	})
}

// Close stops both engines and every derived stream.
func (s *TimerService) Close() {
	s.countdown.Close()
	s.stopwatch.Close()
	s.cancel()
}

func (s *TimerService) countdownFinished() {
	initial := s.countdown.InitialDuration()

	s.mu.Lock()
	s.finished.Set(s.finished.Get() + 1)
	s.mu.Unlock()

	s.logger.Info("countdown finished", "duration", initial)
	if initial <= 0 {
		return
	}
	s.record(&domain.TimerRun{
		Kind:      domain.KindCountdown,
		StartedAt: s.startedAt(&s.countdownStarted),
		Planned:   initial,
		Elapsed:   initial,
		Completed: true,
	})
}

func (s *TimerService) startedAt(field *time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *field
}

// record stores run in history. Failures are logged and never reach the
// engines. A run stopped because the owning context ended, such as on an
// interrupt, is still written.
func (s *TimerService) record(run *domain.TimerRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(context.WithoutCancel(s.scope), run); err != nil {
		s.logger.Warn("recording timer run failed", "kind", run.Kind, "error", err)
	}
}

func (s *TimerService) track(name string, fn func()) {
	startedAt := time.Now()
	fn()
	observeUseCase(s.scope, s.observer, name, startedAt, nil, nil)
}
