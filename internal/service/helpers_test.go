package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/clock"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// setupRunService wires a RunService over a fresh in-memory database.
func setupRunService(t *testing.T, observers ...UseCaseObserver) (RunService, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	svc := NewRunService(
		repository.NewSQLiteRunRepo(database),
		testutil.NewTestUoW(database),
		observers...,
	)
	return svc, database
}

// setupTimerService returns a TimerService on a fake clock recording into a
// fresh database.
func setupTimerService(t *testing.T, observers ...UseCaseObserver) (*TimerService, RunService, *clockwork.FakeClock) {
	t.Helper()
	runs, _ := setupRunService(t)
	fake := clockwork.NewFakeClock()
	svc := NewTimerService(context.Background(), runs, TimerServiceOptions{Clock: clock.New(fake)}, observers...)
	t.Cleanup(svc.Close)
	return svc, runs, fake
}

func advanceTick(t *testing.T, fake *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, fake.BlockUntilContext(ctx, 1), "tick goroutine never parked")
	fake.Advance(d)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}
