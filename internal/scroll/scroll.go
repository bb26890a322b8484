// Package scroll restores the viewport position across page transitions. On
// navigation the final path segment is stored under a single session-scoped
// key; on the next load, a matching transition marker is scrolled to at most
// once per page lifetime.
package scroll

import (
	"strings"
	"sync"
)

// Key is the single session-store key the restorer owns.
const Key = "last-section"

// Store is the session-scoped key/value boundary. One string value lives
// under one key; there is no schema beyond that.
type Store interface {
	Set(key, value string)
	Get(key string) (string, bool)
}

// MemoryStore is a session-lifetime in-memory store.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

// Get returns the value under key and whether it was present.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Document is the narrow boundary the restorer scrolls through.
type Document interface {
	// ScrollToMarker scrolls to the element carrying the given transition
	// identifier marker and reports whether one was found.
	ScrollToMarker(id string) bool
}

// Restorer performs one-shot scroll restoration.
type Restorer struct {
	mu    sync.Mutex
	store Store
	doc   Document
	done  bool
}

// NewRestorer builds a restorer over the given store and document.
func NewRestorer(store Store, doc Document) *Restorer {
	return &Restorer{store: store, doc: doc}
}

// Remember records the final segment of the given path as the restoration
// target for the next load. Paths without a segment store nothing.
func (r *Restorer) Remember(path string) {
	seg := finalSegment(path)
	if seg == "" {
		return
	}
	r.store.Set(Key, seg)
}

// Restore scrolls to the stored marker. It reports whether a scroll happened.
// The first successful scroll consumes the one-shot flag; every later call is
// a no-op. A missing marker or empty store is silently skipped.
func (r *Restorer) Restore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return false
	}
	id, ok := r.store.Get(Key)
	if !ok || id == "" {
		return false
	}
	if !r.doc.ScrollToMarker(id) {
		return false
	}
	r.done = true
	return true
}

// finalSegment extracts the last non-empty path segment.
func finalSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
