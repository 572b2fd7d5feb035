package backup

import (
	"context"
	"errors"
)

// Decision is the outcome of evaluating one local file against the remote store.
type Decision int

const (
	// DecisionUpload means the file must be uploaded. Every branch that
	// cannot be verified resolves here: redundant work is acceptable,
	// wrongly skipping data is not.
	DecisionUpload Decision = iota

	// DecisionSkipUnchanged means an identical object already sits at the
	// file's own destination key.
	DecisionSkipUnchanged

	// DecisionSkipDuplicate means identical content exists elsewhere in the
	// bucket, found through the digest index.
	DecisionSkipDuplicate
)

func (d Decision) String() string {
	switch d {
	case DecisionUpload:
		return "upload"
	case DecisionSkipUnchanged:
		return "skip-unchanged"
	case DecisionSkipDuplicate:
		return "skip-duplicate"
	default:
		return "unknown"
	}
}

// DecisionEngine decides, per file, whether to upload, skip as unchanged, or
// skip as a duplicate of content already stored elsewhere in the bucket.
type DecisionEngine struct {
	hasher ContentHasher
	index  *RemoteObjectIndex
	logger Logger
}

// NewDecisionEngine creates a decision engine over the given hasher and index.
func NewDecisionEngine(hasher ContentHasher, index *RemoteObjectIndex, logger Logger) *DecisionEngine {
	return &DecisionEngine{hasher: hasher, index: index, logger: logger}
}

// Decide evaluates one file, checking the cheapest signals first:
//
//  1. Full-backup mode uploads unconditionally.
//  2. A file that cannot be hashed is uploaded (cannot verify).
//  3. An object at the exact key is compared by size, then digest. Size
//     mismatch is the cheapest, highest-confidence signal of change and
//     short-circuits any digest comparison.
//  4. With deduplication on, a missing object at the key still triggers a
//     bucket-wide digest lookup before uploading.
func (e *DecisionEngine) Decide(ctx context.Context, file *FileRecord, bucket, key string, incremental, dedup bool) Decision {
	if !incremental {
		return DecisionUpload
	}

	digest, err := file.Digest(e.hasher)
	if err != nil {
		e.logger.Warn("cannot hash file, uploading without verification", "path", file.Path, "error", err)
		return DecisionUpload
	}

	remote, err := e.index.LookupByKey(ctx, bucket, key)
	switch {
	case err == nil:
		return e.compareWithRemote(file, digest, remote)
	case errors.Is(err, ErrNotFound):
		if dedup {
			if dupKey, ok := e.index.LookupByDigest(ctx, bucket, digest); ok {
				e.logger.Debug("content already stored under another key", "path", file.Path, "existing_key", dupKey)
				return DecisionSkipDuplicate
			}
		}
		return DecisionUpload
	default:
		e.logger.Warn("metadata probe failed, uploading without verification", "bucket", bucket, "key", key, "error", err)
		return DecisionUpload
	}
}

// compareWithRemote decides between upload and skip-unchanged for a file
// whose destination key is already occupied.
func (e *DecisionEngine) compareWithRemote(file *FileRecord, digest string, remote *ObjectMetadata) Decision {
	if remote.Size != file.Size {
		return DecisionUpload
	}

	if remoteDigest, known := remote.ContentDigest(); known {
		if remoteDigest == digest {
			return DecisionSkipUnchanged
		}
		return DecisionUpload
	}

	// Multipart integrity tag with no recorded digest: the leading tag
	// segment is the only comparison left.
	if remote.ETagLeadingSegment() == digest {
		return DecisionSkipUnchanged
	}
	return DecisionUpload
}
