package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"media-storage-backend/internal/models"
)

// MemStore is an in-memory object store for tests. It implements both
// the media pipeline's store interface and the range source used by the
// streaming reader. Failures can be injected per key.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutFailures maps keys whose Put should fail with the given error.
	PutFailures map[string]error
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects:     make(map[string][]byte),
		PutFailures: make(map[string]error),
	}
}

func (s *MemStore) objectKey(bucket models.Bucket, key string) string {
	return string(bucket) + "/" + key
}

func (s *MemStore) Put(ctx context.Context, bucket models.Bucket, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.PutFailures[key]; ok {
		return err
	}
	s.objects[s.objectKey(bucket, key)] = data
	return nil
}

func (s *MemStore) Get(ctx context.Context, bucket models.Bucket, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.objectKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("object %s/%s does not exist", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) GetRange(ctx context.Context, bucket models.Bucket, key string, start, end int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.objectKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("object %s/%s does not exist", bucket, key)
	}
	if start < 0 || start >= int64(len(data)) || end < start {
		return nil, fmt.Errorf("range %d-%d out of bounds for %d bytes", start, end, len(data))
	}
	if end >= int64(len(data)) {
		end = int64(len(data)) - 1
	}
	out := make([]byte, end-start+1)
	copy(out, data[start:end+1])
	return out, nil
}

func (s *MemStore) Size(ctx context.Context, bucket models.Bucket, key string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.objectKey(bucket, key)]
	if !ok {
		return 0, fmt.Errorf("object %s/%s does not exist", bucket, key)
	}
	return uint64(len(data)), nil
}

func (s *MemStore) Remove(ctx context.Context, bucket models.Bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, s.objectKey(bucket, key))
	return nil
}

func (s *MemStore) RemoveMany(ctx context.Context, bucket models.Bucket, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.objects, s.objectKey(bucket, key))
	}
	return nil
}

// Keys returns the sorted keys stored in one bucket.
func (s *MemStore) Keys(bucket models.Bucket) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := string(bucket) + "/"
	var keys []string
	for k := range s.objects {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k[len(prefix):])
		}
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored bytes of one object.
func (s *MemStore) Object(bucket models.Bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.objectKey(bucket, key)]
	return data, ok
}

// Seed stores an object directly.
func (s *MemStore) Seed(bucket models.Bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[s.objectKey(bucket, key)] = data
}
