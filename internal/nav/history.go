package nav

import "sync"

// History is an in-memory browser-style history. Listeners are notified of
// every location change caused by Push, Back or Forward.
type History struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewHistory starts a history at initial. An empty initial location is "/".
func NewHistory(initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{
		entries:   []string{initial},
		listeners: make(map[int]func(string)),
	}
}

// Location returns the current path.
func (h *History) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push records path as a new entry, discarding any forward entries. Pushing
// the current location is a no-op and returns false.
func (h *History) Push(path string) bool {
	if path == "" {
		path = "/"
	}
	h.mu.Lock()
	if h.entries[h.index] == path {
		h.mu.Unlock()
		return false
	}
	h.entries = append(h.entries[:h.index+1], path)
	h.index = len(h.entries) - 1
	h.mu.Unlock()

	h.notify(path)
	return true
}

// Back moves one entry back. It returns false at the oldest entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward. It returns false at the newest entry.
func (h *History) Forward() bool {
	return h.move(1)
}

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

// CanGoForward reports whether Forward would move.
func (h *History) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index < len(h.entries)-1
}

// Subscribe registers fn for location changes and returns a function that
// removes it. Listeners run on the goroutine that changed the location,
// outside the history lock.
func (h *History) Subscribe(fn func(path string)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	path := h.entries[next]
	h.mu.Unlock()

	h.notify(path)
	return true
}

func (h *History) notify(path string) {
	h.mu.Lock()
	fns := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}
