package backup

import "context"

// RemoteObjectIndex caches what the engine knows about objects already in the
// destination buckets. It lives for exactly one backup pass: the orchestrator
// constructs a fresh index per pass, so nothing here persists across passes.
//
// Not safe for concurrent use; a pass runs on a single goroutine by design.
type RemoteObjectIndex struct {
	store  ObjectStore
	logger Logger

	// digests maps bucket -> content digest -> one known key.
	// A bucket's map is built at most once, on the first digest lookup.
	digests map[string]map[string]string
	built   map[string]bool

	// unavailable marks buckets whose listing failed. Lookups against an
	// unavailable bucket always report not-found, which resolves to an
	// upload rather than a wrongly skipped file.
	unavailable map[string]bool
}

// NewRemoteObjectIndex creates an empty index over the given store.
func NewRemoteObjectIndex(store ObjectStore, logger Logger) *RemoteObjectIndex {
	return &RemoteObjectIndex{
		store:       store,
		logger:      logger,
		digests:     make(map[string]map[string]string),
		built:       make(map[string]bool),
		unavailable: make(map[string]bool),
	}
}

// LookupByKey probes the exact destination key a file would occupy.
// Returns ErrNotFound when nothing is stored there; other errors are
// transient probe failures.
func (x *RemoteObjectIndex) LookupByKey(ctx context.Context, bucket, key string) (*ObjectMetadata, error) {
	return x.store.Head(ctx, bucket, key)
}

// LookupByDigest reports whether content with the given digest exists anywhere
// in the bucket, returning one key that holds it. The bucket's digest index is
// built on first call via a full listing; if that listing fails the index is
// marked unavailable for the rest of the pass and every lookup reports false.
func (x *RemoteObjectIndex) LookupByDigest(ctx context.Context, bucket, digest string) (string, bool) {
	if digest == "" {
		return "", false
	}
	if !x.built[bucket] {
		x.buildIndex(ctx, bucket)
	}
	if x.unavailable[bucket] {
		return "", false
	}
	key, ok := x.digests[bucket][digest]
	return key, ok
}

// buildIndex materializes the digest index for a bucket from a full listing.
// The build is all-or-nothing: a listing failure discards anything collected
// so far instead of leaving a partially populated index.
func (x *RemoteObjectIndex) buildIndex(ctx context.Context, bucket string) {
	x.built[bucket] = true
	index := make(map[string]string)
	count := 0

	err := x.store.List(ctx, bucket, func(obj ObjectMetadata) error {
		count++
		digest, ok := obj.ContentDigest()
		if !ok {
			// Multipart tag with no listed digest: the metadata written
			// at upload time has it, at the cost of one probe.
			meta, err := x.store.Head(ctx, bucket, obj.Key)
			if err != nil {
				x.logger.Debug("skipping unprobeable object in digest index", "bucket", bucket, "key", obj.Key, "error", err)
				return nil
			}
			digest, ok = meta.ContentDigest()
			if !ok {
				return nil
			}
		}
		if _, exists := index[digest]; !exists {
			index[digest] = obj.Key
		}
		return nil
	})
	if err != nil {
		x.unavailable[bucket] = true
		x.logger.Warn("bucket listing failed, digest index unavailable for this pass", "bucket", bucket, "error", err)
		return
	}

	x.digests[bucket] = index
	x.logger.Info("digest index built", "bucket", bucket, "objects", count, "digests", len(index))
}
