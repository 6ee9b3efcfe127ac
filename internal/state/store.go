package state

import (
	"sync"
	"time"
)

// Store coordinates concurrent updates to the gallery snapshot and notifies
// subscribers of every change. The zero value is ready to use.
type Store struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// Update applies fn to the stored snapshot under the write lock. fn reports
// whether it changed anything. Only changes bump Version and reach
// subscribers. Subscribers run after the lock is released and may observe
// snapshots out of order under concurrent updates, so they should compare
// Version.
func (s *Store) Update(fn func(*Snapshot) bool) bool {
	s.mu.Lock()
	if !fn(&s.snapshot) {
		s.mu.Unlock()
		return false
	}
	s.snapshot.Version++
	s.snapshot.LastUpdated = time.Now()
	snap := s.snapshot.clone()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// Subscribe registers fn for changes and returns a function removing it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(Snapshot))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Subscribers returns the number of registered listeners.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
