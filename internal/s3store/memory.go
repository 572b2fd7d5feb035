package s3store

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"

	"b2backup/internal/backup"
)

// MemoryStore is an in-memory implementation of backup.ObjectStore with
// single-part S3 ETag semantics (hex MD5 of the body). It backs tests and the
// "memory" store type; error fields let tests inject failures per operation.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memObject

	// Failure injection for tests. A non-nil error fails the operation.
	HeadErr error
	ListErr error
	PutErr  error

	// PutKeyErr fails uploads to specific "bucket/key" destinations.
	PutKeyErr map[string]error

	// PutCalls counts successful uploads.
	PutCalls int
}

type memObject struct {
	data     []byte
	etag     string
	metadata map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets:   make(map[string]map[string]memObject),
		PutKeyErr: make(map[string]error),
	}
}

// CreateBucket creates an empty bucket. Creating an existing bucket is a no-op.
func (m *MemoryStore) CreateBucket(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[name]; !ok {
		m.buckets[name] = make(map[string]memObject)
	}
}

// SeedObject places an object directly into a bucket with a single-part ETag,
// bypassing Put. Intended for test setup.
func (m *MemoryStore) SeedObject(bucket, key string, data []byte, metadata map[string]string) {
	sum := md5.Sum(data)
	m.SeedObjectWithETag(bucket, key, data, metadata, hex.EncodeToString(sum[:]))
}

// SeedObjectWithETag is SeedObject with an explicit integrity tag, for
// simulating multipart uploads whose ETag is not a content digest.
func (m *MemoryStore) SeedObjectWithETag(bucket, key string, data []byte, metadata map[string]string, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]memObject)
	}
	m.buckets[bucket][key] = memObject{data: data, etag: etag, metadata: metadata}
}

// Object returns a stored object's content and metadata, for test assertions.
func (m *MemoryStore) Object(bucket, key string) (data []byte, metadata map[string]string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, nil, false
	}
	return obj.data, obj.metadata, true
}

// Head probes one key.
func (m *MemoryStore) Head(_ context.Context, bucket, key string) (*backup.ObjectMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.HeadErr != nil {
		return nil, m.HeadErr
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, backup.ErrNotFound
	}
	return &backup.ObjectMetadata{
		Key:          key,
		Size:         int64(len(obj.data)),
		ETag:         obj.etag,
		UserMetadata: obj.metadata,
	}, nil
}

// List streams all objects in the bucket in key order. Listed metadata
// carries no user metadata, matching real listings.
func (m *MemoryStore) List(_ context.Context, bucket string, fn func(backup.ObjectMetadata) error) error {
	m.mu.RLock()
	if m.ListErr != nil {
		m.mu.RUnlock()
		return m.ListErr
	}
	objects, ok := m.buckets[bucket]
	if !ok {
		m.mu.RUnlock()
		return fmt.Errorf("bucket not found: %s", bucket)
	}

	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	listed := make([]backup.ObjectMetadata, 0, len(keys))
	for _, k := range keys {
		obj := objects[k]
		listed = append(listed, backup.ObjectMetadata{
			Key:  k,
			Size: int64(len(obj.data)),
			ETag: obj.etag,
		})
	}
	m.mu.RUnlock()

	for _, meta := range listed {
		if err := fn(meta); err != nil {
			return err
		}
	}
	return nil
}

// Put stores size bytes from r under the key with a single-part ETag.
func (m *MemoryStore) Put(_ context.Context, bucket, key string, r io.Reader, size int64, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	if err := m.PutKeyErr[bucket+"/"+key]; err != nil {
		return err
	}
	if _, ok := m.buckets[bucket]; !ok {
		return fmt.Errorf("bucket not found: %s", bucket)
	}

	var buf bytes.Buffer
	written, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("reading upload body: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	sum := md5.Sum(buf.Bytes())
	m.buckets[bucket][key] = memObject{
		data:     buf.Bytes(),
		etag:     hex.EncodeToString(sum[:]),
		metadata: metadata,
	}
	m.PutCalls++
	return nil
}

// ListBuckets returns all bucket names in sorted order.
func (m *MemoryStore) ListBuckets(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ backup.ObjectStore = (*MemoryStore)(nil)
