package history

import (
	"database/sql"
	"fmt"

	"b2backup/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDB implements DB using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) a history database at path and
// migrates it to the latest schema. path can be ":memory:" for tests.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// RecordRun persists one finished run.
func (s *SQLiteDB) RecordRun(run *Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, result, uploaded, skipped_unchanged, skipped_duplicate, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Result,
		run.Uploaded, run.SkippedUnchanged, run.SkippedDuplicate, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteDB) RecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, result, uploaded, skipped_unchanged, skipped_duplicate, failed
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Result,
			&run.Uploaded, &run.SkippedUnchanged, &run.SkippedDuplicate, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

var _ DB = (*SQLiteDB)(nil)
