// Package recipes holds the in-memory recipe list for one app session.
package recipes

import (
	"sync"
	"time"

	"recipecapture/capture"
)

// Entry is a single recipe. Entries are values; once appended they never change.
type Entry struct {
	Title     string           `json:"title"`
	ImageRef  capture.ImageRef `json:"image_ref,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// HasImage reports whether the entry came from the camera.
func (e Entry) HasImage() bool { return e.ImageRef != "" }

// Store is an append-only ordered list. Titles are not unique and nothing is validated here;
// callers validate before appending.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// List returns a snapshot copy in insertion order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Empty() bool {
	return s.Len() == 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
