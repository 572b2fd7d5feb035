package backup

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Object metadata keys written at upload time. Deduplication of content
// uploaded by earlier passes depends on reading these back, so they must
// stay stable across versions.
const (
	MetadataKeyFileHash = "file-hash"
	MetadataKeyFileSize = "file-size"
)

// ErrNotFound is returned by ObjectStore.Head when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectMetadata describes one object already stored at the destination.
type ObjectMetadata struct {
	Key  string
	Size int64

	// ETag is the store's native integrity tag with surrounding quotes
	// stripped. For single-part uploads it is the hex MD5 of the content;
	// multipart tags carry a "-<parts>" suffix and are not a content digest.
	ETag string

	// UserMetadata holds custom metadata with lowercased keys. Objects
	// uploaded by this engine carry MetadataKeyFileHash and MetadataKeyFileSize.
	UserMetadata map[string]string
}

// ContentDigest returns the object's content digest and whether it is known.
// Metadata written at upload time is authoritative; otherwise a single-part
// ETag is the digest itself. Multipart ETags without metadata leave the
// digest unknown.
func (m *ObjectMetadata) ContentDigest() (string, bool) {
	if h := m.UserMetadata[MetadataKeyFileHash]; h != "" {
		return h, true
	}
	if m.ETag != "" && !strings.Contains(m.ETag, "-") {
		return m.ETag, true
	}
	return "", false
}

// ETagLeadingSegment returns the part of the integrity tag before the
// multipart "-<parts>" suffix, or the whole tag for single-part objects.
// This follows the S3 multipart tagging convention; retargeting to a store
// with a different convention requires re-deriving this comparison.
func (m *ObjectMetadata) ETagLeadingSegment() string {
	if i := strings.IndexByte(m.ETag, '-'); i >= 0 {
		return m.ETag[:i]
	}
	return m.ETag
}

// ObjectStore is the destination-store client the engine drives. Timeout and
// retry policy belong to implementations, not the engine.
type ObjectStore interface {
	// Head probes metadata for the exact key. Returns ErrNotFound when no
	// object exists there; any other error is treated as transient.
	Head(ctx context.Context, bucket, key string) (*ObjectMetadata, error)

	// List streams metadata for every object in the bucket, invoking fn
	// once per object. Listed metadata carries no user metadata; callers
	// needing it must Head the object. A non-nil error from fn aborts the
	// listing and is returned.
	List(ctx context.Context, bucket string, fn func(ObjectMetadata) error) error

	// Put uploads size bytes from r to the key, attaching the given
	// user metadata.
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, metadata map[string]string) error

	// ListBuckets returns the names of all buckets the credentials can see.
	// Used as the trial call that validates credentials.
	ListBuckets(ctx context.Context) ([]string, error)
}
