package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillMarkSeq(db); err != nil {
		return fmt.Errorf("backfilling mark seq values: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS timer_runs (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL CHECK(kind IN ('countdown','stopwatch')),
		started_at  TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		elapsed_ms  INTEGER NOT NULL DEFAULT 0,
		completed   INTEGER NOT NULL DEFAULT 0,
		note        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_timer_runs_started ON timer_runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_timer_runs_kind ON timer_runs(kind)`,

	`CREATE TABLE IF NOT EXISTS timer_marks (
		run_id    TEXT NOT NULL REFERENCES timer_runs(id) ON DELETE CASCADE,
		kind      TEXT NOT NULL CHECK(kind IN ('lap','split')),
		seq       INTEGER NOT NULL DEFAULT 0,
		offset_ms INTEGER NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_timer_marks_run ON timer_marks(run_id)`,

	// Early databases stored runs without a note and marks without a seq.
	`ALTER TABLE timer_runs ADD COLUMN note TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE timer_marks ADD COLUMN seq INTEGER NOT NULL DEFAULT 0`,
}

// migrateBackfillMarkSeq numbers marks stored before seq existed, in insertion
// order per run and kind. Idempotent: rows with seq > 0 are left alone.
func migrateBackfillMarkSeq(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timer_marks WHERE seq = 0`).Scan(&count); err != nil {
		return fmt.Errorf("checking timer_marks seq: %w", err)
	}
	if count == 0 {
		return nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT run_id, kind FROM timer_marks WHERE seq = 0 ORDER BY run_id, kind`)
	if err != nil {
		return fmt.Errorf("listing runs for seq backfill: %w", err)
	}
	type group struct{ runID, kind string }
	var groups []group
	for rows.Next() {
		var g group
		if err := rows.Scan(&g.runID, &g.kind); err != nil {
			rows.Close()
			return fmt.Errorf("scanning run id: %w", err)
		}
		groups = append(groups, g)
	}
	rows.Close()

	for _, g := range groups {
		if err := backfillRunMarkSeq(ctx, db, g.runID, g.kind); err != nil {
			return fmt.Errorf("backfilling seq for run %s: %w", g.runID, err)
		}
	}
	return nil
}

func backfillRunMarkSeq(ctx context.Context, db *sql.DB, runID, kind string) error {
	var next int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM timer_marks WHERE run_id = ? AND kind = ?`,
		runID, kind).Scan(&next); err != nil {
		return fmt.Errorf("reading max seq: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT rowid FROM timer_marks WHERE run_id = ? AND kind = ? AND seq = 0 ORDER BY rowid`,
		runID, kind)
	if err != nil {
		return fmt.Errorf("listing marks: %w", err)
	}
	var rowIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		rowIDs = append(rowIDs, id)
	}
	rows.Close()

	for _, id := range rowIDs {
		if _, err := db.ExecContext(ctx,
			`UPDATE timer_marks SET seq = ? WHERE rowid = ?`, next, id); err != nil {
			return fmt.Errorf("updating mark seq: %w", err)
		}
		next++
	}
	return nil
}
