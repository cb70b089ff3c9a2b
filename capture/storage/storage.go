// Package storage holds captured photos. The rest of the app only ever sees the opaque
// reference a store hands back.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("image not found")

type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

const memScheme = "mem://"

// MemoryImageStore is a simple in-memory implementation for testing and offline runs
type MemoryImageStore struct {
	mu     sync.RWMutex
	images map[string][]byte
	err    error
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{images: make(map[string][]byte)}
}

// NewMemoryImageStoreWithError returns a store whose every call fails with err.
func NewMemoryImageStoreWithError(err error) *MemoryImageStore {
	return &MemoryImageStore{images: make(map[string][]byte), err: err}
}

func (m *MemoryImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[key] = append([]byte(nil), data...)
	return memScheme + key, nil
}

func (m *MemoryImageStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	key, ok := strings.CutPrefix(ref, memScheme)
	if !ok {
		return nil, fmt.Errorf("not a memory ref: %q", ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.images[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Len reports how many images are held.
func (m *MemoryImageStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

// Extension picks a file extension for a photo content type.
func Extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".bin"
	}
}
