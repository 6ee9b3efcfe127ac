package searchindex

import (
	"errors"
	"sync"
)

// Scope is the shared slot a loaded engine registers itself into. Consumers
// poll Lookup until the capability appears.
type Scope struct {
	mu       sync.RWMutex
	searcher Searcher
}

// Register installs s when the slot is empty. It reports whether s was
// installed.
func (sc *Scope) Register(s Searcher) bool {
	if s == nil {
		return false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.searcher != nil {
		return false
	}
	sc.searcher = s
	return true
}

// Lookup returns the registered searcher or nil.
func (sc *Scope) Lookup() Searcher {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.searcher
}

// ErrScopeTaken is returned by Install when an engine is already
// registered on the scope.
var ErrScopeTaken = errors.New("search index already registered")

// Install decodes an index asset and registers the engine on scope. The
// slot is written at most once.
func Install(data []byte, scope *Scope) error {
	engine, err := Decode(data)
	if err != nil {
		return err
	}
	if !scope.Register(engine) {
		return ErrScopeTaken
	}
	return nil
}
