package backup

import (
	"errors"
	"fmt"
)

// ErrNoFolders is returned by Validate for an empty plan.
var ErrNoFolders = errors.New("no folders selected for backup")

// FolderConfig is one user-configured folder with its optional per-folder bucket.
type FolderConfig struct {
	Path   string
	Bucket string
}

// PlanEntry maps one local folder to its destination bucket. Entries are
// immutable for the duration of a pass.
type PlanEntry struct {
	Folder string
	Bucket string
}

// Planner resolves the configured folders into the folder→bucket plan a pass
// executes.
type Planner struct{}

// Plan produces the ordered backup plan. In single-bucket mode every folder
// maps to the one configured bucket, overriding any per-folder value; in
// per-folder mode each folder keeps its own.
func (Planner) Plan(folders []FolderConfig, singleBucketMode bool, singleBucketName string) []PlanEntry {
	plan := make([]PlanEntry, 0, len(folders))
	for _, f := range folders {
		bucket := f.Bucket
		if singleBucketMode {
			bucket = singleBucketName
		}
		plan = append(plan, PlanEntry{Folder: f.Path, Bucket: bucket})
	}
	return plan
}

// Validate rejects plans that cannot be executed: an empty plan, or any entry
// without a destination bucket.
func (Planner) Validate(plan []PlanEntry) error {
	if len(plan) == 0 {
		return ErrNoFolders
	}
	for _, entry := range plan {
		if entry.Bucket == "" {
			return fmt.Errorf("bucket name required for folder: %s", entry.Folder)
		}
	}
	return nil
}
