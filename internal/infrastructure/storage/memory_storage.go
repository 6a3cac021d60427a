package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*MemoryImageStorage)(nil)

// MemoryImageStorage keeps objects in memory. It backs local development
// when no bucket is configured; objects do not survive a restart.
type MemoryImageStorage struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is one object held by MemoryImageStorage
type StoredObject struct {
	ContentType string
	Data        []byte
}

// NewMemoryImageStorage creates a MemoryImageStorage serving URLs under baseURL
func NewMemoryImageStorage(baseURL string) *MemoryImageStorage {
	return &MemoryImageStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredObject),
	}
}

// PutObject stores at most size bytes of body
func (s *MemoryImageStorage) PutObject(_ context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	data, err := io.ReadAll(io.LimitReader(body, size))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = StoredObject{ContentType: contentType, Data: data}
	s.mu.Unlock()
	return s.baseURL + "/" + key, nil
}

// Get returns the stored object
func (s *MemoryImageStorage) Get(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryImageStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
