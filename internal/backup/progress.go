package backup

// ProgressTracker tracks folder and file completion for one pass and renders
// it as a monotonically non-decreasing overall percentage. Counters are
// mutated only by the pass's single processing goroutine and reset at the
// start of each pass.
type ProgressTracker struct {
	totalFolders     int
	completedFolders int
	totalFiles       int // files in the current folder
	completedFiles   int // completed files in the current folder
	inFolder         bool
}

// NewProgressTracker creates an idle tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// StartPass resets all counters for a pass over the given number of folders.
func (t *ProgressTracker) StartPass(folderCount int) {
	t.totalFolders = folderCount
	t.completedFolders = 0
	t.totalFiles = 0
	t.completedFiles = 0
	t.inFolder = false
}

// StartFolder sets the per-folder denominator for the folder about to be
// processed.
func (t *ProgressTracker) StartFolder(fileCount int) {
	t.totalFiles = fileCount
	t.completedFiles = 0
	t.inFolder = true
}

// CompleteFile marks one file of the current folder done. Never exceeds the
// folder's file count.
func (t *ProgressTracker) CompleteFile() {
	if t.completedFiles < t.totalFiles {
		t.completedFiles++
	}
}

// CompleteFolder marks the current folder done. Never exceeds the pass's
// folder count.
func (t *ProgressTracker) CompleteFolder() {
	if t.completedFolders < t.totalFolders {
		t.completedFolders++
	}
	t.totalFiles = 0
	t.completedFiles = 0
	t.inFolder = false
}

// OverallPercent returns overall completion in 0..100. Completed folders each
// contribute a full folder share; the current folder contributes its file
// completion as a fraction of one share. Exactly 100 is reached only when
// every folder has completed.
func (t *ProgressTracker) OverallPercent() int {
	if t.totalFolders == 0 {
		return 0
	}
	if t.completedFolders >= t.totalFolders {
		return 100
	}

	progress := float64(t.completedFolders)
	if t.inFolder && t.totalFiles > 0 {
		progress += float64(t.completedFiles) / float64(t.totalFiles)
	}
	return int(progress / float64(t.totalFolders) * 100)
}

// FolderPercent returns completion of the current folder in 0..100.
func (t *ProgressTracker) FolderPercent() int {
	if t.totalFiles == 0 {
		return 0
	}
	return t.completedFiles * 100 / t.totalFiles
}
