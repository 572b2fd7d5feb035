package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"b2backup/internal/backup"
	"b2backup/internal/config"
	"b2backup/internal/credentials"
	"b2backup/internal/fs"
	"b2backup/internal/history"
	"b2backup/internal/s3store"
)

// BackupApp is the application layer between the CLI and the backup engine.
// It constructs all dependencies from config, turns configuration into a
// backup plan, and records each pass in the run history.
type BackupApp struct {
	cfg          *config.Config
	store        backup.ObjectStore
	fsmgr        backup.FilesystemManager
	orchestrator *backup.Orchestrator
	historyDB    history.DB
	logger       backup.Logger
	logFile      *os.File
	runID        string
}

// NewBackupApp creates a fully wired BackupApp from the given config and
// credentials. The caller must call Close when done.
func NewBackupApp(ctx context.Context, cfg *config.Config, creds *credentials.Credentials) (*BackupApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Ignore)

	store, err := s3store.NewStoreFromConfig(ctx, cfg.Store, creds)
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	historyDB, err := history.NewFromConfig(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("creating history database: %w", err)
	}

	runID := uuid.New().String()
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	hasher := backup.NewMD5Hasher(fsmgr)
	tracker := backup.NewProgressTracker()
	orchestrator := backup.NewOrchestrator(store, fsmgr, hasher, tracker, logger)

	return &BackupApp{
		cfg:          cfg,
		store:        store,
		fsmgr:        fsmgr,
		orchestrator: orchestrator,
		historyDB:    historyDB,
		logger:       logger,
		logFile:      logFile,
		runID:        runID,
	}, nil
}

// Plan resolves the configured folders into the folder→bucket plan.
func (a *BackupApp) Plan() []backup.PlanEntry {
	folders := make([]backup.FolderConfig, 0, len(a.cfg.Folders))
	for _, f := range a.cfg.Folders {
		folders = append(folders, backup.FolderConfig{Path: f.Path, Bucket: f.Bucket})
	}
	var planner backup.Planner
	return planner.Plan(folders, a.cfg.SingleBucketMode, a.cfg.SingleBucketName)
}

// Options returns the configured per-pass switches.
func (a *BackupApp) Options() backup.Options {
	return backup.Options{Incremental: a.cfg.Incremental, Dedup: a.cfg.Dedup}
}

// RunBackup executes one backup pass and records its outcome in the run
// history. Returns true when the pass ran to completion.
func (a *BackupApp) RunBackup(ctx context.Context, opts backup.Options, obs backup.Observer) bool {
	startedAt := time.Now().UTC()
	summary, ok := a.orchestrator.Execute(ctx, a.Plan(), opts, obs)

	result := history.ResultCompleted
	switch {
	case summary.Cancelled:
		result = history.ResultCancelled
	case !ok:
		result = history.ResultFailed
	}

	run := &history.Run{
		ID:               a.runID,
		StartedAt:        startedAt,
		FinishedAt:       time.Now().UTC(),
		Result:           result,
		Uploaded:         summary.Uploaded,
		SkippedUnchanged: summary.SkippedUnchanged,
		SkippedDuplicate: summary.SkippedDuplicate,
		Failed:           summary.Failed,
	}
	if err := a.historyDB.RecordRun(run); err != nil {
		a.logger.Error("recording run history", "error", err)
	}

	return ok
}

// PreviewBackup reports the decision each file would get without uploading.
func (a *BackupApp) PreviewBackup(ctx context.Context, opts backup.Options) (*backup.PreviewResult, error) {
	return a.orchestrator.Preview(ctx, a.Plan(), opts)
}

// Cancel requests cooperative cancellation of the running pass.
func (a *BackupApp) Cancel() {
	a.orchestrator.Cancel()
}

// ValidateConnection performs the trial call that verifies the store is
// reachable with the wired credentials.
func (a *BackupApp) ValidateConnection(ctx context.Context) error {
	if _, err := a.store.ListBuckets(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit recorded runs, newest first.
func (a *BackupApp) RecentRuns(limit int) ([]*history.Run, error) {
	return a.historyDB.RecentRuns(limit)
}

// Close releases the history database and the log file.
func (a *BackupApp) Close() error {
	var firstErr error
	if err := a.historyDB.Close(); err != nil {
		firstErr = fmt.Errorf("closing history database: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
