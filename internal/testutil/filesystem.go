package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"b2backup/internal/backup"
)

// MockFilesystemManager is an in-memory filesystem for testing the engine
// without touching disk.
type MockFilesystemManager struct {
	folders    map[string]bool
	files      map[string][]byte
	unreadable map[string]bool
	folderErr  map[string]error
}

// NewMockFilesystemManager creates an empty mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		folders:    make(map[string]bool),
		files:      make(map[string][]byte),
		unreadable: make(map[string]bool),
		folderErr:  make(map[string]error),
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.folders[path] = true
}

// AddFile adds a file with the given content.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.files[path] = content
}

// MarkUnreadable makes Open fail for the given file.
func (m *MockFilesystemManager) MarkUnreadable(path string) {
	m.unreadable[path] = true
}

// FailFolder makes FindFiles fail for the given folder.
func (m *MockFilesystemManager) FailFolder(folder string, err error) {
	m.folderErr[folder] = err
}

// ResolveFolder validates that the path was added as a directory.
func (m *MockFilesystemManager) ResolveFolder(rawPath string) (string, error) {
	if !m.folders[rawPath] {
		return "", fmt.Errorf("directory not found: %s", rawPath)
	}
	return rawPath, nil
}

// FindFiles returns all files under folder, sorted by path.
func (m *MockFilesystemManager) FindFiles(folder string) ([]backup.FileRecord, error) {
	if err := m.folderErr[folder]; err != nil {
		return nil, err
	}
	if !m.folders[folder] {
		return nil, fmt.Errorf("directory not found: %s", folder)
	}

	var records []backup.FileRecord
	prefix := folder + "/"
	for path, content := range m.files {
		if strings.HasPrefix(path, prefix) {
			records = append(records, backup.FileRecord{Path: path, Size: int64(len(content))})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// Open opens a file for reading.
func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	if m.unreadable[path] {
		return nil, fmt.Errorf("permission denied: %s", path)
	}
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

var _ backup.FilesystemManager = (*MockFilesystemManager)(nil)
