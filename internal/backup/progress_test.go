package backup_test

import (
	"testing"

	"b2backup/internal/backup"
)

func TestProgressTracker_OverallPercent(t *testing.T) {
	t.Run("zero folders reports zero", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(0)
		if got := tracker.OverallPercent(); got != 0 {
			t.Errorf("OverallPercent() = %d, want 0", got)
		}
	})

	t.Run("empty folder contributes nothing until completed", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(2)
		tracker.StartFolder(0)
		if got := tracker.OverallPercent(); got != 0 {
			t.Errorf("OverallPercent() = %d, want 0", got)
		}
		tracker.CompleteFolder()
		if got := tracker.OverallPercent(); got != 50 {
			t.Errorf("OverallPercent() after empty folder = %d, want 50", got)
		}
	})

	t.Run("file completion contributes a folder fraction", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(2)
		tracker.StartFolder(4)

		tracker.CompleteFile()
		if got := tracker.OverallPercent(); got != 12 { // 1/4 of 1/2
			t.Errorf("OverallPercent() after 1/4 files = %d, want 12", got)
		}
		tracker.CompleteFile()
		tracker.CompleteFile()
		tracker.CompleteFile()
		if got := tracker.OverallPercent(); got != 50 {
			t.Errorf("OverallPercent() after 4/4 files = %d, want 50", got)
		}
	})

	t.Run("reaches exactly 100 only when all folders complete", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(3)

		for i := 0; i < 3; i++ {
			if got := tracker.OverallPercent(); got >= 100 {
				t.Fatalf("OverallPercent() = %d before all folders complete", got)
			}
			tracker.StartFolder(1)
			tracker.CompleteFile()
			tracker.CompleteFolder()
		}
		if got := tracker.OverallPercent(); got != 100 {
			t.Errorf("OverallPercent() after all folders = %d, want 100", got)
		}
	})

	t.Run("never decreases across a pass", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(3)

		last := -1
		check := func() {
			got := tracker.OverallPercent()
			if got < last {
				t.Fatalf("OverallPercent() decreased from %d to %d", last, got)
			}
			last = got
		}

		for _, files := range []int{5, 0, 2} {
			tracker.StartFolder(files)
			check()
			for i := 0; i < files; i++ {
				tracker.CompleteFile()
				check()
			}
			tracker.CompleteFolder()
			check()
		}
		if last != 100 {
			t.Errorf("final OverallPercent() = %d, want 100", last)
		}
	})

	t.Run("counters never exceed totals", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(1)
		tracker.StartFolder(2)
		tracker.CompleteFile()
		tracker.CompleteFile()
		tracker.CompleteFile() // over-completion is clamped
		tracker.CompleteFolder()
		tracker.CompleteFolder()
		if got := tracker.OverallPercent(); got != 100 {
			t.Errorf("OverallPercent() = %d, want 100", got)
		}
	})

	t.Run("reset between passes", func(t *testing.T) {
		tracker := backup.NewProgressTracker()
		tracker.StartPass(1)
		tracker.StartFolder(1)
		tracker.CompleteFile()
		tracker.CompleteFolder()

		tracker.StartPass(2)
		if got := tracker.OverallPercent(); got != 0 {
			t.Errorf("OverallPercent() after reset = %d, want 0", got)
		}
	})
}

func TestProgressTracker_FolderPercent(t *testing.T) {
	tracker := backup.NewProgressTracker()
	tracker.StartPass(1)

	tracker.StartFolder(0)
	if got := tracker.FolderPercent(); got != 0 {
		t.Errorf("FolderPercent() with zero files = %d, want 0", got)
	}

	tracker.StartFolder(4)
	tracker.CompleteFile()
	tracker.CompleteFile()
	if got := tracker.FolderPercent(); got != 50 {
		t.Errorf("FolderPercent() = %d, want 50", got)
	}
}
