package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"convert-json-to-parquet/internal/location"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps objects in memory. Keys are bucket and path, so one
// store can stand in for either scheme.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[memKey][]byte
}

type memKey struct {
	bucket string
	path   string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[memKey][]byte)}
}

// Set stores data at loc.
func (s *MemoryStore) Set(loc location.Location, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[memKey{loc.Bucket, loc.Path}] = append([]byte(nil), data...)
}

// Get returns the data stored at loc.
func (s *MemoryStore) Get(loc location.Location) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[memKey{loc.Bucket, loc.Path}]
	return data, ok
}

func (s *MemoryStore) List(ctx context.Context, loc location.Location) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []Object
	for k, data := range s.objects {
		if k.bucket != loc.Bucket || !underPrefix(k.path, loc.Path) || hidden(k.path) {
			continue
		}
		objects = append(objects, Object{
			Location: location.Location{Scheme: loc.Scheme, Bucket: k.bucket, Path: k.path},
			Size:     int64(len(data)),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Location.Path < objects[j].Location.Path })
	return objects, nil
}

func (s *MemoryStore) Open(ctx context.Context, loc location.Location) (io.ReadCloser, error) {
	data, ok := s.Get(loc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Put(ctx context.Context, loc location.Location, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("putting %s: %w", loc, err)
	}
	s.Set(loc, data)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, loc location.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey{loc.Bucket, loc.Path}
	if _, ok := s.objects[k]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	delete(s.objects, k)
	return nil
}
