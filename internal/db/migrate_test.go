package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Second run is a no-op.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"timer_runs", "timer_marks"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_timer_runs_started",
		"idx_timer_runs_kind",
		"idx_timer_marks_run",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite uses "memory" journal mode; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestMigrate_RunKindCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO timer_runs (id, kind, started_at, created_at)
		VALUES ('r1', 'hourglass', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid kind should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO timer_runs (id, kind, started_at, created_at)
		VALUES ('r1', 'stopwatch', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_MarksCascadeWithRun(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO timer_runs (id, kind, started_at, created_at)
		VALUES ('r1', 'stopwatch', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO timer_marks (run_id, kind, seq, offset_ms) VALUES ('r1', 'lap', 1, 1000)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO timer_marks (run_id, kind, seq, offset_ms) VALUES ('r1', 'pit', 2, 1000)`)
	assert.Error(t, err, "invalid mark kind should be rejected")

	_, err = db.Exec(`DELETE FROM timer_runs WHERE id = 'r1'`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM timer_marks`).Scan(&count))
	assert.Equal(t, 0, count, "marks should be deleted with their run")
}

func TestMigrate_TimerRunsDefaultValues(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO timer_runs (id, kind, started_at, created_at)
		VALUES ('r1', 'countdown', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	var durationMs, elapsedMs, completed int
	var note string
	err = db.QueryRow(`SELECT duration_ms, elapsed_ms, completed, note FROM timer_runs WHERE id = 'r1'`).
		Scan(&durationMs, &elapsedMs, &completed, &note)
	require.NoError(t, err)
	assert.Equal(t, 0, durationMs)
	assert.Equal(t, 0, elapsedMs)
	assert.Equal(t, 0, completed)
	assert.Equal(t, "", note)
}
