package backup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
)

// ContentHasher computes a stable content digest for a local file.
// Same bytes always produce the same digest.
type ContentHasher interface {
	// Digest returns the hex-encoded digest of the file's content.
	// An unreadable file returns an error; callers treat that as
	// "cannot verify" and fall back to uploading.
	Digest(path string) (string, error)
}

// MD5Hasher computes streaming MD5 digests. MD5 is the algorithm S3-compatible
// stores use for the ETag of single-part objects, so digests can be compared
// against remote integrity tags without re-uploading.
type MD5Hasher struct {
	fsmgr FilesystemManager
}

// NewMD5Hasher creates a hasher that reads files through the given filesystem manager.
func NewMD5Hasher(fsmgr FilesystemManager) *MD5Hasher {
	return &MD5Hasher{fsmgr: fsmgr}
}

// Digest streams the file through MD5 in bounded chunks; whole files are
// never held in memory.
func (h *MD5Hasher) Digest(path string) (string, error) {
	f, err := h.fsmgr.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	sum := md5.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

var _ ContentHasher = (*MD5Hasher)(nil)
