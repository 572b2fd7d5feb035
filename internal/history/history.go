// Package history records the outcome of backup passes in a local database.
// The engine itself stays persistence-free: the app layer turns each pass's
// summary into one row here.
package history

import "time"

// Run results.
const (
	ResultCompleted = "completed"
	ResultCancelled = "cancelled"
	ResultFailed    = "failed"
)

// Run is the recorded outcome of one backup pass.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	Result           string
	Uploaded         int
	SkippedUnchanged int
	SkippedDuplicate int
	Failed           int
}

// DB stores and retrieves run records.
type DB interface {
	// RecordRun persists one finished run.
	RecordRun(run *Run) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]*Run, error)

	// Close releases the underlying database.
	Close() error
}
