package backup

import "io"

// FileRecord describes one local file queued for a backup decision.
// The content digest is computed lazily: enumeration only stats files,
// and full-backup mode never hashes at all.
type FileRecord struct {
	Path string // absolute path
	Size int64

	digest    string
	digestErr error
	hashed    bool
}

// Digest returns the file's content digest, computing it through h on
// first use and caching the result for the rest of the file's lifetime.
func (r *FileRecord) Digest(h ContentHasher) (string, error) {
	if !r.hashed {
		r.digest, r.digestErr = h.Digest(r.Path)
		r.hashed = true
	}
	return r.digest, r.digestErr
}

// FilesystemManager provides the filesystem operations the engine needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// ResolveFolder validates a raw path and returns its absolute form.
	// The path must point to an existing directory.
	ResolveFolder(rawPath string) (string, error)

	// FindFiles enumerates all regular files under folder recursively,
	// in a deterministic order. Symlinks, devices, and other special
	// files are excluded.
	FindFiles(folder string) ([]FileRecord, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)
}
