package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

const runColumns = `id, kind, started_at, duration_ms, elapsed_ms, completed, note, created_at`

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo. conn may be a *sql.DB or a
// *sql.Tx handed out by a UnitOfWork.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.TimerRun) error {
	query := `INSERT INTO timer_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		string(run.Kind),
		run.StartedAt.UTC().Format(time.RFC3339),
		durationToMs(run.Planned),
		durationToMs(run.Elapsed),
		boolToInt(run.Completed),
		run.Note,
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting timer run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.TimerRun, error) {
	query := `SELECT ` + runColumns + ` FROM timer_runs WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanRun(row)
}

func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.TimerRun, error) {
	query := `SELECT ` + runColumns + ` FROM timer_runs
		ORDER BY started_at DESC, created_at DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	defer rows.Close()
	return r.scanRuns(rows)
}

func (r *SQLiteRunRepo) ListByKind(ctx context.Context, kind domain.TimerKind, limit int) ([]*domain.TimerRun, error) {
	query := `SELECT ` + runColumns + ` FROM timer_runs
		WHERE kind = ?
		ORDER BY started_at DESC, created_at DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, string(kind), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing runs by kind: %w", err)
	}
	defer rows.Close()
	return r.scanRuns(rows)
}

func (r *SQLiteRunRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timer_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timer run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting timer run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("timer run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRunRepo) Summary(ctx context.Context, days int) ([]domain.RunSummary, error) {
	query := `SELECT kind, COUNT(*), COALESCE(SUM(completed), 0), COALESCE(SUM(elapsed_ms), 0)
		FROM timer_runs
		WHERE started_at >= date('now', ? || ' days')
		GROUP BY kind
		ORDER BY kind`
	rows, err := r.db.QueryContext(ctx, query, fmt.Sprintf("-%d", days))
	if err != nil {
		return nil, fmt.Errorf("summarizing runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var s domain.RunSummary
		var kind string
		var totalMs int64
		if err := rows.Scan(&kind, &s.Runs, &s.Completed, &totalMs); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		s.Kind = domain.TimerKind(kind)
		s.Total = msToDuration(totalMs)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary: %w", err)
	}
	return out, nil
}

// scanRun scans a single run from a *sql.Row.
func (r *SQLiteRunRepo) scanRun(row *sql.Row) (*domain.TimerRun, error) {
	var run domain.TimerRun
	var kind, startedAtStr, createdAtStr string
	var plannedMs, elapsedMs int64
	var completed int

	err := row.Scan(&run.ID, &kind, &startedAtStr, &plannedMs, &elapsedMs, &completed, &run.Note, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timer run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timer run: %w", err)
	}

	return r.populateRun(&run, kind, startedAtStr, createdAtStr, plannedMs, elapsedMs, completed)
}

// scanRuns scans multiple runs from *sql.Rows.
func (r *SQLiteRunRepo) scanRuns(rows *sql.Rows) ([]*domain.TimerRun, error) {
	var runs []*domain.TimerRun
	for rows.Next() {
		var run domain.TimerRun
		var kind, startedAtStr, createdAtStr string
		var plannedMs, elapsedMs int64
		var completed int

		err := rows.Scan(&run.ID, &kind, &startedAtStr, &plannedMs, &elapsedMs, &completed, &run.Note, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}

		parsed, parseErr := r.populateRun(&run, kind, startedAtStr, createdAtStr, plannedMs, elapsedMs, completed)
		if parseErr != nil {
			return nil, parseErr
		}
		runs = append(runs, parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// populateRun fills in parsed fields on a TimerRun after scanning raw values.
func (r *SQLiteRunRepo) populateRun(run *domain.TimerRun, kind, startedAtStr, createdAtStr string, plannedMs, elapsedMs int64, completed int) (*domain.TimerRun, error) {
	run.Kind = domain.TimerKind(kind)
	run.Planned = msToDuration(plannedMs)
	run.Elapsed = msToDuration(elapsedMs)
	run.Completed = intToBool(completed)

	var parseErr error
	run.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	run.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return run, nil
}
