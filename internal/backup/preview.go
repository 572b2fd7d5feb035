package backup

import "context"

// PreviewEntry is the decision a run would take for one file, without acting
// on it.
type PreviewEntry struct {
	Path     string
	Bucket   string
	Key      string
	Size     int64
	Decision Decision
}

// PreviewResult summarizes what a pass over the plan would do.
type PreviewResult struct {
	Entries     []PreviewEntry
	UploadCount int
	UploadBytes int64
	SkipCount   int
	SkipBytes   int64
}

// Preview evaluates the plan file by file and reports the decision each file
// would get, with byte totals for uploads versus skips. Nothing is uploaded.
// Folders that cannot be enumerated are skipped and the preview continues.
func (o *Orchestrator) Preview(ctx context.Context, plan []PlanEntry, opts Options) (*PreviewResult, error) {
	if err := o.planner.Validate(plan); err != nil {
		return nil, err
	}

	index := NewRemoteObjectIndex(o.store, o.logger)
	engine := NewDecisionEngine(o.hasher, index, o.logger)

	result := &PreviewResult{}
	for _, entry := range plan {
		files, err := o.fsmgr.FindFiles(entry.Folder)
		if err != nil {
			o.logger.Warn("skipping unreadable folder in preview", "folder", entry.Folder, "error", err)
			continue
		}

		for i := range files {
			file := &files[i]
			key := DestinationKey(entry.Folder, file.Path)
			decision := engine.Decide(ctx, file, entry.Bucket, key, opts.Incremental, opts.Dedup)

			result.Entries = append(result.Entries, PreviewEntry{
				Path:     file.Path,
				Bucket:   entry.Bucket,
				Key:      key,
				Size:     file.Size,
				Decision: decision,
			})
			if decision == DecisionUpload {
				result.UploadCount++
				result.UploadBytes += file.Size
			} else {
				result.SkipCount++
				result.SkipBytes += file.Size
			}
		}
	}
	return result, nil
}
