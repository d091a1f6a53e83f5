package cli

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testApp wires a full App on a fake clock backed by an in-memory DB.
func testApp(t *testing.T) *App {
	t.Helper()
	app, _ := testAppWithClock(t)
	return app
}

func testAppWithClock(t *testing.T) (*App, *clockwork.FakeClock) {
	t.Helper()
	return testAppWithContext(t, context.Background())
}

// testAppWithContext builds the timers under ctx, the way main builds them
// under the signal context.
func testAppWithContext(t *testing.T, ctx context.Context) (*App, *clockwork.FakeClock) {
	t.Helper()
	database := testutil.NewTestDB(t)
	runs := service.NewRunService(
		repository.NewSQLiteRunRepo(database),
		testutil.NewTestUoW(database),
	)

	fake := clockwork.NewFakeClock()
	timers := service.NewTimerService(ctx, runs, service.TimerServiceOptions{
		Clock: clock.New(fake),
	})
	t.Cleanup(timers.Close)

	return &App{
		Timers: timers,
		Runs:   runs,
		Config: config.DefaultConfig(),
		Logger: service.DiscardLogger(),
		Bell:   &syncBuffer{},
	}, fake
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// advanceTick waits for the engine's tick goroutine to park on the fake
// clock and then moves time forward.
func advanceTick(t *testing.T, fake *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, fake.BlockUntilContext(ctx, 1), "tick goroutine never parked")
	fake.Advance(d)
}

func seedRuns(t *testing.T, app *App, runs ...*domain.TimerRun) {
	t.Helper()
	for _, r := range runs {
		require.NoError(t, app.Runs.Record(context.Background(), r))
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitFor):
		t.Fatal("command did not return")
		return nil
	}
}

// --- Root ---

func TestRootCmd_NonInteractiveShowsHelp(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "countdown")
	assert.Contains(t, out, "stopwatch")
	assert.Contains(t, out, "history")
}

// --- History ---

func TestHistoryCmd_ListEmpty(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestHistoryCmd_ListShowsRuns(t *testing.T) {
	app := testApp(t)
	seedRuns(t, app,
		testutil.NewTestCountdownRun(25*time.Minute),
		testutil.NewTestStopwatchRun(90*time.Second),
	)

	out, err := executeCmd(t, app, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "countdown")
	assert.Contains(t, out, "stopwatch")
	assert.Contains(t, out, "25:00")
}

func TestHistoryCmd_KindFilter(t *testing.T) {
	app := testApp(t)
	seedRuns(t, app,
		testutil.NewTestCountdownRun(25*time.Minute),
		testutil.NewTestStopwatchRun(90*time.Second),
	)

	out, err := executeCmd(t, app, "history", "--kind", "stopwatch")
	require.NoError(t, err)
	assert.Contains(t, out, "stopwatch")
	assert.NotContains(t, out, "25:00")
}

func TestHistoryCmd_UnknownKind(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "history", "list", "--kind", "egg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestHistoryCmd_ShowByPrefix(t *testing.T) {
	app := testApp(t)
	run := testutil.NewTestStopwatchRun(10*time.Second,
		testutil.WithLaps([]time.Duration{4 * time.Second, 6 * time.Second}, []time.Duration{4 * time.Second}),
		testutil.WithNote("intervals"),
	)
	seedRuns(t, app, run)

	out, err := executeCmd(t, app, "history", "show", run.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, run.ID)
	assert.Contains(t, out, "intervals")
	assert.Contains(t, out, "00:06.000")
}

func TestHistoryCmd_ShowUnknownID(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "history", "show", "deadbeef")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHistoryCmd_Remove(t *testing.T) {
	app := testApp(t)
	run := testutil.NewTestCountdownRun(time.Minute)
	seedRuns(t, app, run)

	out, err := executeCmd(t, app, "history", "rm", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed run")

	_, err = app.Runs.Get(context.Background(), run.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHistoryCmd_Summary(t *testing.T) {
	app := testApp(t)
	seedRuns(t, app,
		testutil.NewTestCountdownRun(10*time.Minute),
		testutil.NewTestCountdownRun(10*time.Minute, testutil.WithIncomplete()),
	)

	out, err := executeCmd(t, app, "history", "summary", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "LAST 3 DAYS")
	assert.Contains(t, out, "countdown")
	assert.Contains(t, out, "50%")
}

func TestHistoryCmd_Disabled(t *testing.T) {
	app := testApp(t)
	app.Runs = nil

	_, err := executeCmd(t, app, "history")
	require.Error(t, err)
	assert.ErrorIs(t, err, errHistoryDisabled)
}

// --- Countdown ---

func TestCountdownCmd_RejectsBadDuration(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "countdown", "soon")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrBadDuration)
}

func TestCountdownLines_RunsToCompletion(t *testing.T) {
	app, fake := testAppWithClock(t)
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() { done <- runCountdownLines(context.Background(), app, out, 3*time.Second) }()

	for range 3 {
		advanceTick(t, fake, time.Second)
	}
	require.NoError(t, waitDone(t, done))

	text := stripANSI(out.String())
	assert.True(t, strings.HasPrefix(text, "00:03\n"), "got %q", text)
	assert.Equal(t, 1, strings.Count(text, "00:00\n"))
	assert.Contains(t, text, "time's up")
	assert.Equal(t, "\a", app.Bell.(*syncBuffer).String())

	assert.Eventually(t, func() bool {
		runs, err := app.Runs.ListRecent(context.Background(), domain.KindCountdown, 0)
		return err == nil && len(runs) == 1 && runs[0].Completed
	}, waitFor, 5*time.Millisecond)
}

func TestCountdownLines_BellDisabled(t *testing.T) {
	app, fake := testAppWithClock(t)
	app.Config.Bell = false

	done := make(chan error, 1)
	go func() { done <- runCountdownLines(context.Background(), app, io.Discard, time.Second) }()

	advanceTick(t, fake, time.Second)
	require.NoError(t, waitDone(t, done))
	assert.Empty(t, app.Bell.(*syncBuffer).String())
}

func TestCountdownLines_CancelRecordsIncomplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, fake := testAppWithContext(t, ctx)
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() { done <- runCountdownLines(ctx, app, out, time.Minute) }()

	advanceTick(t, fake, time.Second)
	require.Eventually(t, func() bool {
		return app.Timers.CountdownRemaining().Get() == 59*time.Second
	}, waitFor, time.Millisecond)
	cancel()
	require.NoError(t, waitDone(t, done))

	assert.Contains(t, out.String(), "stopped with 00:59 left")

	runs, err := app.Runs.ListRecent(context.Background(), domain.KindCountdown, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Completed)
	assert.Equal(t, time.Second, runs[0].Elapsed)
}

// --- Stopwatch ---

func TestStopwatchLines_LapSplitStop(t *testing.T) {
	app, fake := testAppWithClock(t)
	out := &syncBuffer{}
	in, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })

	done := make(chan error, 1)
	go func() { done <- runStopwatchLines(context.Background(), app, in, out, 0) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "running") }, waitFor, time.Millisecond)

	advanceTick(t, fake, 2*time.Second)
	_, err := io.WriteString(feed, "lap\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "lap 1  00:02.000") }, waitFor, time.Millisecond)

	advanceTick(t, fake, time.Second)
	_, err = io.WriteString(feed, "split\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "split 1  00:03.000") }, waitFor, time.Millisecond)

	_, err = io.WriteString(feed, "stop\n")
	require.NoError(t, err)
	require.NoError(t, waitDone(t, done))
	assert.Contains(t, out.String(), "stopped at 00:03.000 (1 laps, 1 splits)")

	runs, err := app.Runs.ListRecent(context.Background(), domain.KindStopwatch, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3*time.Second, runs[0].Elapsed)

	// Listings carry no marks; Get loads them.
	run, err := app.Runs.Get(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, run.Laps())
	assert.Equal(t, []time.Duration{3 * time.Second}, run.Splits())
}

func TestStopwatchLines_CancelRecordsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, fake := testAppWithContext(t, ctx)
	out := &syncBuffer{}
	in, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })

	done := make(chan error, 1)
	go func() { done <- runStopwatchLines(ctx, app, in, out, 0) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "running") }, waitFor, time.Millisecond)
	advanceTick(t, fake, 2*time.Second)
	cancel()
	require.NoError(t, waitDone(t, done))

	runs, err := app.Runs.ListRecent(context.Background(), domain.KindStopwatch, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2*time.Second, runs[0].Elapsed)
}

func TestStopwatchLines_UnknownCommand(t *testing.T) {
	app := testApp(t)
	out := &syncBuffer{}

	err := runStopwatchLines(context.Background(), app, strings.NewReader("jump\n"), out, 0)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown command "jump"`)
	assert.Contains(t, out.String(), "stopped at 00:00.000")
}

func TestStopwatchLines_EOFStopsWithoutRecording(t *testing.T) {
	app := testApp(t)

	err := runStopwatchLines(context.Background(), app, strings.NewReader(""), io.Discard, 0)
	require.NoError(t, err)

	runs, err := app.Runs.ListRecent(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "a run with no elapsed time is not recorded")
}

func TestStopwatchLines_ForLimit(t *testing.T) {
	app, fake := testAppWithClock(t)
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() {
		done <- runStopwatchLines(context.Background(), app, strings.NewReader(""), out, 2*time.Second)
	}()

	for range 4 {
		advanceTick(t, fake, 500*time.Millisecond)
	}
	require.NoError(t, waitDone(t, done))
	assert.Contains(t, out.String(), "stopped at 00:02.000 (0 laps, 0 splits)")
}

// --- Flags ---

func TestClockValue(t *testing.T) {
	var d time.Duration
	v := newClockValue(90*time.Second, &d)
	assert.Equal(t, 90*time.Second, d)
	assert.Equal(t, "01:30", v.String())
	assert.Equal(t, "duration", v.Type())

	require.NoError(t, v.Set("25m"))
	assert.Equal(t, 25*time.Minute, d)

	require.NoError(t, v.Set("01:05"))
	assert.Equal(t, 65*time.Second, d)

	assert.Error(t, v.Set("later"))
	assert.Equal(t, 65*time.Second, d, "a rejected value leaves the flag unchanged")
}
