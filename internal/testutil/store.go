package testutil

import "b2backup/internal/s3store"

// NewTestStore creates an in-memory object store with the given buckets.
func NewTestStore(buckets ...string) *s3store.MemoryStore {
	store := s3store.NewMemoryStore()
	for _, bucket := range buckets {
		store.CreateBucket(bucket)
	}
	return store
}
