package repository

import (
	"context"

	"github.com/alexanderramin/tempo/internal/domain"
)

type RunRepo interface {
	Create(ctx context.Context, r *domain.TimerRun) error
	GetByID(ctx context.Context, id string) (*domain.TimerRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.TimerRun, error)
	ListByKind(ctx context.Context, kind domain.TimerKind, limit int) ([]*domain.TimerRun, error)
	Delete(ctx context.Context, id string) error
	// Summary aggregates runs started within the last days, one row per kind.
	Summary(ctx context.Context, days int) ([]domain.RunSummary, error)
}

type MarkRepo interface {
	CreateBatch(ctx context.Context, runID string, marks []domain.TimerMark) error
	ListByRun(ctx context.Context, runID string) ([]domain.TimerMark, error)
}
