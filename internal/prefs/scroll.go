package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// maxScrollEntries bounds the number of remembered locations.
const maxScrollEntries = 200

// ScrollStore remembers the selected row per gallery location so returning
// to a location restores where the user was. Persistence is best-effort: a
// missing or corrupt file starts an empty store.
type ScrollStore struct {
	mu        sync.Mutex
	path      string
	positions map[string]int
	order     []string
	dirty     bool
}

type scrollFile struct {
	Order     []string       `toml:"order"`
	Positions map[string]int `toml:"positions"`
}

// DefaultScrollPath returns the session file inside the user cache dir.
func DefaultScrollPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "galeri", "scroll.toml")
}

// NewScrollStore returns an empty store persisting to path. An empty path
// keeps positions in memory only.
func NewScrollStore(path string) *ScrollStore {
	return &ScrollStore{path: strings.TrimSpace(path), positions: make(map[string]int)}
}

// LoadScrollStore reads the store at path, ignoring read and parse errors.
func LoadScrollStore(path string) *ScrollStore {
	s := NewScrollStore(path)
	if s.path == "" {
		return s
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	var f scrollFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return s
	}
	for _, loc := range f.Order {
		pos, ok := f.Positions[loc]
		if !ok || pos < 0 {
			continue
		}
		if _, seen := s.positions[loc]; seen {
			continue
		}
		s.positions[loc] = pos
		s.order = append(s.order, loc)
	}
	s.trim()
	return s
}

// Save records the position for location. Negative positions are ignored.
func (s *ScrollStore) Save(location string, position int) {
	if s == nil || position < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.positions[location]; ok {
		if prev == position {
			return
		}
		s.remove(location)
	}
	s.positions[location] = position
	s.order = append(s.order, location)
	s.trim()
	s.dirty = true
}

// Get returns the saved position for location.
func (s *ScrollStore) Get(location string) (int, bool) {
	if s == nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[location]
	return pos, ok
}

// Len returns the number of remembered locations.
func (s *ScrollStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

// Persist writes the store to disk if anything changed since the last write.
func (s *ScrollStore) Persist() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.path == "" {
		return nil
	}
	f := scrollFile{
		Order:     append([]string(nil), s.order...),
		Positions: make(map[string]int, len(s.positions)),
	}
	for k, v := range s.positions {
		f.Positions[k] = v
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal scroll positions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create scroll dir: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *ScrollStore) remove(location string) {
	for i, loc := range s.order {
		if loc == location {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.positions, location)
}

// trim drops the oldest entries beyond maxScrollEntries.
func (s *ScrollStore) trim() {
	for len(s.order) > maxScrollEntries {
		delete(s.positions, s.order[0])
		s.order = s.order[1:]
	}
}
