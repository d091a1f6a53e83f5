package service

import (
	"context"

	"github.com/alexanderramin/tempo/internal/domain"
)

// RunService stores and queries the history of finished timers.
// Get and Delete accept a full run ID or a unique prefix of at least
// MinIDPrefix characters.
type RunService interface {
	Record(ctx context.Context, run *domain.TimerRun) error
	Get(ctx context.Context, id string) (*domain.TimerRun, error)
	// ListRecent lists newest first. An empty kind lists every kind.
	ListRecent(ctx context.Context, kind domain.TimerKind, limit int) ([]*domain.TimerRun, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, days int) ([]domain.RunSummary, error)
}
