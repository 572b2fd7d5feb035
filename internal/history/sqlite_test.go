package history

import (
	"path/filepath"
	"testing"
	"time"

	"b2backup/internal/config"
)

func testRun(id string, startedAt time.Time) *Run {
	return &Run{
		ID:               id,
		StartedAt:        startedAt,
		FinishedAt:       startedAt.Add(2 * time.Minute),
		Result:           ResultCompleted,
		Uploaded:         3,
		SkippedUnchanged: 10,
		SkippedDuplicate: 1,
	}
}

func TestSQLiteDB_RecordAndRecentRuns(t *testing.T) {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDB() error = %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := db.RecordRun(testRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", id, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := db.RecentRuns(10)
		if err != nil {
			t.Fatalf("RecentRuns() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("len(runs) = %d, want 3", len(runs))
		}
		wantOrder := []string{"run-3", "run-2", "run-1"}
		for i, run := range runs {
			if run.ID != wantOrder[i] {
				t.Errorf("runs[%d].ID = %q, want %q", i, run.ID, wantOrder[i])
			}
		}
	})

	t.Run("limit is honored", func(t *testing.T) {
		runs, err := db.RecentRuns(2)
		if err != nil {
			t.Fatalf("RecentRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("len(runs) = %d, want 2", len(runs))
		}
		if runs[0].ID != "run-3" {
			t.Errorf("runs[0].ID = %q, want run-3", runs[0].ID)
		}
	})

	t.Run("counters survive the round trip", func(t *testing.T) {
		runs, err := db.RecentRuns(1)
		if err != nil {
			t.Fatalf("RecentRuns() error = %v", err)
		}
		got := runs[0]
		if got.Uploaded != 3 || got.SkippedUnchanged != 10 || got.SkippedDuplicate != 1 || got.Failed != 0 {
			t.Errorf("counters = %+v", got)
		}
		if got.Result != ResultCompleted {
			t.Errorf("Result = %q, want %q", got.Result, ResultCompleted)
		}
	})
}

func TestSQLiteDB_RecentRuns_Empty(t *testing.T) {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDB() error = %v", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("sqlite creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "data")
		db, err := NewFromConfig(config.HistoryConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		defer db.Close()

		if err := db.RecordRun(testRun("run-1", time.Now())); err != nil {
			t.Errorf("RecordRun() error = %v", err)
		}
	})

	t.Run("sqlite requires data_dir", func(t *testing.T) {
		if _, err := NewFromConfig(config.HistoryConfig{Type: "sqlite"}); err == nil {
			t.Error("NewFromConfig() = nil error without data_dir")
		}
	})

	t.Run("memory", func(t *testing.T) {
		db, err := NewFromConfig(config.HistoryConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		db.Close()
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewFromConfig(config.HistoryConfig{Type: "etcd"}); err == nil {
			t.Error("NewFromConfig() = nil error for unknown type")
		}
	})
}
