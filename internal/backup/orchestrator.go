package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"
)

// Options are the per-pass switches.
type Options struct {
	// Incremental skips files whose content is already stored at their
	// destination key. When false every file is uploaded unconditionally.
	Incremental bool

	// Dedup additionally skips files whose content exists anywhere in the
	// destination bucket, at the cost of one full bucket listing per pass.
	Dedup bool
}

// Summary is the accounting of one finished (or cancelled) pass.
type Summary struct {
	Uploaded         int
	SkippedUnchanged int
	SkippedDuplicate int
	Failed           int
	Cancelled        bool
}

// Orchestrator drives one backup pass end to end: enumerate folders, decide
// per file, upload or skip, and report progress through the observer. It owns
// cancellation for the pass.
//
// A single Orchestrator runs at most one pass at a time; the caller must not
// start a second pass while one is running. Execute is synchronous; callers
// with an event loop run it on their own worker goroutine and receive events
// through the observer.
type Orchestrator struct {
	store   ObjectStore
	fsmgr   FilesystemManager
	hasher  ContentHasher
	tracker *ProgressTracker
	planner Planner
	logger  Logger

	cancelled atomic.Bool
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(store ObjectStore, fsmgr FilesystemManager, hasher ContentHasher, tracker *ProgressTracker, logger Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		fsmgr:   fsmgr,
		hasher:  hasher,
		tracker: tracker,
		logger:  logger,
	}
}

// Cancel requests cooperative cancellation of the running pass. Idempotent.
// The flag is polled between files and between folders; an in-flight upload
// or hash always runs to completion first.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
	o.logger.Info("backup cancellation requested")
}

// ResetCancellation clears the cancellation flag. Must be called before
// reusing the orchestrator for another pass after a cancellation.
func (o *Orchestrator) ResetCancellation() {
	o.cancelled.Store(false)
}

// Validate checks a plan without executing it.
func (o *Orchestrator) Validate(plan []PlanEntry) error {
	return o.planner.Validate(plan)
}

// Execute runs one backup pass over the plan. The returned bool reports
// whether the pass ran to completion: false means it was cancelled or never
// started. Per-file failures are reported through the observer and do not
// flip the result.
//
// Nothing propagates past this boundary: every failure inside the pass is
// converted into an observer event or a fail-open upload decision.
func (o *Orchestrator) Execute(ctx context.Context, plan []PlanEntry, opts Options, obs Observer) (Summary, bool) {
	var summary Summary

	if err := o.planner.Validate(plan); err != nil {
		obs.Error(err.Error())
		return summary, false
	}
	if o.store == nil {
		obs.Error("no destination store configured")
		return summary, false
	}

	// Fresh per-pass state: the digest index is rebuilt every pass, so a
	// pass never trusts stale knowledge of the bucket.
	index := NewRemoteObjectIndex(o.store, o.logger)
	engine := NewDecisionEngine(o.hasher, index, o.logger)

	o.tracker.StartPass(len(plan))
	o.logger.Info("backup pass started", "folders", len(plan), "incremental", opts.Incremental, "dedup", opts.Dedup)

	for _, entry := range plan {
		if o.cancelled.Load() {
			return o.finishCancelled(summary, obs)
		}

		obs.Status(fmt.Sprintf("Backing up: %s", entry.Folder))

		files, err := o.fsmgr.FindFiles(entry.Folder)
		if err != nil {
			// The folder cannot be enumerated; report it and keep the
			// pass going for the remaining folders.
			obs.Error(fmt.Sprintf("Cannot read folder %s: %v", entry.Folder, err))
			o.tracker.StartFolder(0)
			o.tracker.CompleteFolder()
			obs.Progress(o.tracker.OverallPercent())
			continue
		}

		o.tracker.StartFolder(len(files))

		for i := range files {
			if o.cancelled.Load() {
				return o.finishCancelled(summary, obs)
			}
			o.processFile(ctx, engine, entry, &files[i], opts, obs, &summary)
			o.tracker.CompleteFile()
			obs.Progress(o.tracker.OverallPercent())
		}

		o.tracker.CompleteFolder()
		obs.Progress(o.tracker.OverallPercent())
	}

	obs.Progress(o.tracker.OverallPercent())
	obs.Status("Backup completed successfully!")
	o.logger.Info("backup pass completed",
		"uploaded", summary.Uploaded,
		"skipped_unchanged", summary.SkippedUnchanged,
		"skipped_duplicate", summary.SkippedDuplicate,
		"failed", summary.Failed)
	return summary, true
}

// processFile decides and acts on a single file. Failures are accounted and
// reported; they never abort the pass.
func (o *Orchestrator) processFile(ctx context.Context, engine *DecisionEngine, entry PlanEntry, file *FileRecord, opts Options, obs Observer, summary *Summary) {
	key := DestinationKey(entry.Folder, file.Path)

	switch engine.Decide(ctx, file, entry.Bucket, key, opts.Incremental, opts.Dedup) {
	case DecisionSkipUnchanged:
		summary.SkippedUnchanged++
		o.logger.Debug("file unchanged", "path", file.Path, "key", key)
	case DecisionSkipDuplicate:
		summary.SkippedDuplicate++
		o.logger.Debug("file content duplicated in bucket", "path", file.Path, "key", key)
	case DecisionUpload:
		obs.Status(fmt.Sprintf("Uploading: %s", filepath.Base(file.Path)))
		if err := o.upload(ctx, entry.Bucket, key, file); err != nil {
			summary.Failed++
			obs.Error(fmt.Sprintf("Failed to upload: %s", file.Path))
			o.logger.Error("upload failed", "path", file.Path, "bucket", entry.Bucket, "key", key, "error", err)
			return
		}
		summary.Uploaded++
		o.logger.Debug("file uploaded", "path", file.Path, "key", key)
	}
}

// upload streams one file to its destination key, attaching the content
// digest and size as object metadata so later passes and other folders can
// deduplicate against it.
func (o *Orchestrator) upload(ctx context.Context, bucket, key string, file *FileRecord) error {
	metadata := map[string]string{
		MetadataKeyFileSize: strconv.FormatInt(file.Size, 10),
	}
	if digest, err := file.Digest(o.hasher); err == nil {
		metadata[MetadataKeyFileHash] = digest
	}

	f, err := o.fsmgr.Open(file.Path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if err := o.store.Put(ctx, bucket, key, f, file.Size, metadata); err != nil {
		return fmt.Errorf("uploading to %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (o *Orchestrator) finishCancelled(summary Summary, obs Observer) (Summary, bool) {
	summary.Cancelled = true
	obs.Status("Backup cancelled")
	o.logger.Info("backup pass cancelled",
		"uploaded", summary.Uploaded,
		"skipped_unchanged", summary.SkippedUnchanged,
		"skipped_duplicate", summary.SkippedDuplicate)
	return summary, false
}

// DestinationKey computes the object key for a file backed up from folder:
// the folder's basename followed by the file's folder-relative path, with
// separators normalized to forward slashes regardless of host platform.
func DestinationKey(folder, path string) string {
	rel, err := filepath.Rel(folder, path)
	if err != nil {
		// Enumeration produced the path from the folder, so Rel only
		// fails on malformed input; fall back to the basename.
		rel = filepath.Base(path)
	}
	return filepath.Base(folder) + "/" + filepath.ToSlash(rel)
}
