package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteMarkRepo implements MarkRepo using a SQLite database.
type SQLiteMarkRepo struct {
	db db.DBTX
}

func NewSQLiteMarkRepo(conn db.DBTX) *SQLiteMarkRepo {
	return &SQLiteMarkRepo{db: conn}
}

// CreateBatch inserts marks for runID. Callers wanting all-or-nothing
// semantics pass a transaction-scoped DBTX.
func (r *SQLiteMarkRepo) CreateBatch(ctx context.Context, runID string, marks []domain.TimerMark) error {
	query := `INSERT INTO timer_marks (run_id, kind, seq, offset_ms) VALUES (?, ?, ?, ?)`
	for _, m := range marks {
		if _, err := r.db.ExecContext(ctx, query, runID, string(m.Kind), m.Seq, durationToMs(m.Offset)); err != nil {
			return fmt.Errorf("inserting %s %d: %w", m.Kind, m.Seq, err)
		}
	}
	return nil
}

func (r *SQLiteMarkRepo) ListByRun(ctx context.Context, runID string) ([]domain.TimerMark, error) {
	query := `SELECT kind, seq, offset_ms FROM timer_marks WHERE run_id = ? ORDER BY kind, seq`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing marks by run: %w", err)
	}
	defer rows.Close()

	var marks []domain.TimerMark
	for rows.Next() {
		var m domain.TimerMark
		var kind string
		var offsetMs int64
		if err := rows.Scan(&kind, &m.Seq, &offsetMs); err != nil {
			return nil, fmt.Errorf("scanning mark row: %w", err)
		}
		m.Kind = domain.MarkKind(kind)
		m.Offset = msToDuration(offsetMs)
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating marks: %w", err)
	}
	return marks, nil
}
