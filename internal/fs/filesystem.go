package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"b2backup/internal/backup"
)

// OSFilesystemManager is the real filesystem implementation of
// backup.FilesystemManager, with optional ignore patterns applied during
// enumeration.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. ignorePatterns follow the matcher rules in ignore.go.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// ResolveFolder validates a raw path and returns its absolute form.
func (m *OSFilesystemManager) ResolveFolder(rawPath string) (string, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}
	return absPath, nil
}

// FindFiles enumerates regular files under folder recursively, sorted by path
// so passes process files in a stable order. Symlinks, devices, and other
// special files are excluded; so are files matching the ignore patterns.
func (m *OSFilesystemManager) FindFiles(folder string) ([]backup.FileRecord, error) {
	var records []backup.FileRecord

	err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		if m.ignore.Match(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		records = append(records, backup.FileRecord{Path: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

var _ backup.FilesystemManager = (*OSFilesystemManager)(nil)
