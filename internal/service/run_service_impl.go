package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

// MinIDPrefix is the shortest ID prefix Get and Delete will resolve.
const MinIDPrefix = 4

// ErrAmbiguousID is returned when an ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run ID")

type runService struct {
	runs     repository.RunRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewRunService(
	runs repository.RunRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) RunService {
	return &runService{
		runs:     runs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Record stores the run and its marks in one transaction.
func (s *runService) Record(ctx context.Context, run *domain.TimerRun) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"kind": string(run.Kind), "marks": len(run.Marks)}
	defer func() { observeUseCase(ctx, s.observer, "record-run", startedAt, fields, err) }()

	if err = run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = run.CreatedAt.Add(-run.Elapsed)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteRunRepo(tx).Create(ctx, run); err != nil {
			return err
		}
		if len(run.Marks) == 0 {
			return nil
		}
		return repository.NewSQLiteMarkRepo(tx).CreateBatch(ctx, run.ID, run.Marks)
	})
}

// Get reads the run and its marks from one snapshot.
func (s *runService) Get(ctx context.Context, id string) (*domain.TimerRun, error) {
	var run *domain.TimerRun
	err := s.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		runs := repository.NewSQLiteRunRepo(tx)
		fullID, err := resolveID(ctx, runs, id)
		if err != nil {
			return err
		}
		run, err = runs.GetByID(ctx, fullID)
		if err != nil {
			return err
		}
		run.Marks, err = repository.NewSQLiteMarkRepo(tx).ListByRun(ctx, run.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *runService) ListRecent(ctx context.Context, kind domain.TimerKind, limit int) ([]*domain.TimerRun, error) {
	if kind == "" {
		return s.runs.ListRecent(ctx, limit)
	}
	return s.runs.ListByKind(ctx, kind, limit)
}

func (s *runService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() { observeUseCase(ctx, s.observer, "delete-run", startedAt, nil, err) }()

	fullID, err := resolveID(ctx, s.runs, id)
	if err != nil {
		return err
	}
	return s.runs.Delete(ctx, fullID)
}

func (s *runService) Summary(ctx context.Context, days int) ([]domain.RunSummary, error) {
	if days <= 0 {
		return nil, fmt.Errorf("summary window must be at least one day, got %d", days)
	}
	return s.runs.Summary(ctx, days)
}

// resolveID expands a unique prefix into a full run ID.
func resolveID(ctx context.Context, runs repository.RunRepo, id string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := runs.GetByID(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if len(id) < MinIDPrefix {
		return "", fmt.Errorf("run %q: %w", id, repository.ErrNotFound)
	}

	all, err := runs.ListRecent(ctx, 0)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range all {
		if !strings.HasPrefix(r.ID, id) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%q matches several runs: %w", id, ErrAmbiguousID)
		}
		match = r.ID
	}
	if match == "" {
		return "", fmt.Errorf("run %q: %w", id, repository.ErrNotFound)
	}
	return match, nil
}
