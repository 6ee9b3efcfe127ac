package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/nav"
	"github.com/tengrikut/galeri/internal/search"
	"github.com/tengrikut/galeri/internal/state"
)

// DefaultDebounce is the quiet period before a query change runs a search.
const DefaultDebounce = 300 * time.Millisecond

// Index is the search connector as seen by the controller.
type Index interface {
	Start(ctx context.Context)
	State() search.State
	Ready() bool
	Err() error
	Subscribe(fn func(search.State, error)) (unsubscribe func())
	PerformSearch(ctx context.Context, query string) ([]string, error)
	Close()
}

var _ Index = (*search.Connector)(nil)

// Options configure a Controller.
type Options struct {
	Fetcher  catalog.Fetcher
	Index    Index
	History  *nav.History
	Store    *state.Store  // nil creates a new store
	Debounce time.Duration // zero uses DefaultDebounce
	Logger   *slog.Logger
}

// Controller owns the gallery state. It keeps the store in sync with the
// history location, loads catalog data and runs debounced searches.
type Controller struct {
	fetcher catalog.Fetcher
	index   Index
	history *nav.History
	store   *state.Store
	logger  *slog.Logger
	search  *debouncer

	metaOnce  sync.Once
	pageSeq   atomic.Uint64
	searchGen atomic.Uint64

	mu             sync.Mutex
	ctx            context.Context
	cancel         context.CancelFunc
	started        bool
	closed         bool
	unsubscribe    []func()
	awaitingIndex  bool
	awaitingQuery  string
	closeCompleted chan struct{}
}

// New validates opts and builds a controller positioned on page 1.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("gallery: fetcher is required")
	}
	if opts.Index == nil {
		return nil, errors.New("gallery: search index is required")
	}
	if opts.History == nil {
		return nil, errors.New("gallery: history is required")
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	wait := opts.Debounce
	if wait <= 0 {
		wait = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store.Update(func(s *state.Snapshot) bool {
		if s.Page >= 1 {
			return false
		}
		s.Page = 1
		return true
	})

	return &Controller{
		fetcher:        opts.Fetcher,
		index:          opts.Index,
		history:        opts.History,
		store:          store,
		logger:         logger.With("component", "gallery"),
		search:         newDebouncer(wait),
		closeCompleted: make(chan struct{}),
	}, nil
}

// Store returns the state store the controller writes to.
func (c *Controller) Store() *state.Store {
	return c.store
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() state.Snapshot {
	return c.store.Snapshot()
}

// Start attaches to the history, synchronizes from the current location,
// loads the catalog summary and starts the search index. Only the first
// call has an effect.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.unsubscribe = append(c.unsubscribe,
		c.history.Subscribe(func(string) { c.SyncFromLocation() }),
		c.index.Subscribe(c.onIndexState),
	)
	c.mu.Unlock()

	c.onIndexState(c.index.State(), c.index.Err())
	c.SyncFromLocation()
	c.loadMetadata()
	c.index.Start(c.ctx)
}

// SyncFromLocation decodes the history location into page and query. Only
// actual changes mutate state and trigger fetches or searches, so repeated
// calls for the same location are no-ops.
func (c *Controller) SyncFromLocation() {
	if !c.running() {
		return
	}
	route := nav.Parse(c.history.Location())

	var pageChanged, queryChanged bool
	c.store.Update(func(s *state.Snapshot) bool {
		if s.Query != route.Query {
			s.Query = route.Query
			s.SearchIDs = nil
			s.Filtering = false
			s.Searching = false
			s.SearchErr = nil
			queryChanged = true
		}
		if s.Page != route.Page {
			s.Page = route.Page
			pageChanged = true
		}
		return pageChanged || queryChanged
	})

	if pageChanged {
		c.loadPage()
	}
	if queryChanged {
		c.scheduleSearch(route.Query)
	}
}

// Navigate pushes path onto the history. It returns false when path is
// already the current location.
func (c *Controller) Navigate(path string) bool {
	if !c.running() {
		return false
	}
	return c.history.Push(path)
}

// Search navigates to the first page of results for query. A blank query
// navigates to the unfiltered first page.
func (c *Controller) Search(query string) bool {
	return c.Navigate(nav.BuildPath(1, query))
}

// GoToPage navigates to page n, keeping the current query.
func (c *Controller) GoToPage(n int) bool {
	return c.Navigate(nav.BuildPath(n, c.store.Snapshot().Query))
}

// Back moves to the previous location.
func (c *Controller) Back() bool {
	if !c.running() {
		return false
	}
	return c.history.Back()
}

// Forward moves to the next location.
func (c *Controller) Forward() bool {
	if !c.running() {
		return false
	}
	return c.history.Forward()
}

// Location returns the current history location.
func (c *Controller) Location() string {
	return c.history.Location()
}

// Close cancels pending timers and fetches, detaches from the history and
// the index, stops the index worker and marks the index not ready.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.closeCompleted
		return
	}
	c.closed = true
	cancel := c.cancel
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	c.search.Stop()
	c.searchGen.Add(1)
	c.pageSeq.Add(1)
	for _, fn := range unsubscribe {
		fn()
	}
	if cancel != nil {
		cancel()
	}
	c.index.Close()
	c.store.Update(func(s *state.Snapshot) bool {
		s.IndexState = search.StateUnstarted
		s.Searching = false
		s.PageLoading = false
		s.CizelgeLoading = false
		return true
	})
	close(c.closeCompleted)
}

func (c *Controller) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.closed
}

func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *Controller) loadMetadata() {
	c.metaOnce.Do(func() {
		ctx := c.context()
		c.store.Update(func(s *state.Snapshot) bool {
			s.CizelgeLoading = true
			s.CizelgeErr = nil
			return true
		})

		go func() {
			cz, err := c.fetcher.FetchCizelge(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				c.logger.Error("load catalog summary", "error", err)
				c.store.Update(func(s *state.Snapshot) bool {
					s.CizelgeLoading = false
					s.CizelgeErr = err
					return true
				})
				return
			}

			c.store.Update(func(s *state.Snapshot) bool {
				s.Cizelge = cz
				s.CizelgeLoading = false
				s.CizelgeErr = nil
				if total := s.TotalPages(); s.Page < 1 || s.Page > total {
					c.logger.Info("page out of range, showing first page", "page", s.Page, "total_pages", total)
					s.Page = 1
				}
				return true
			})
			c.logger.Info("catalog summary loaded", "total_items", cz.PaginationInfo.TotalItems, "total_pages", cz.PaginationInfo.TotalPages)
			c.loadPage()
		}()
	})
}

// loadPage fetches the current page. Each call takes a new sequence number
// under the store lock. A response is applied only while its number is
// still the latest, so the last request wins.
func (c *Controller) loadPage() {
	ctx := c.context()
	var (
		seq   uint64
		page  int
		fetch bool
	)
	c.store.Update(func(s *state.Snapshot) bool {
		if s.Cizelge == nil {
			return false
		}
		seq = c.pageSeq.Add(1)
		page = s.Page
		if !s.PageInRange() {
			s.PageItems = nil
			s.PageFor = 0
			s.PageLoading = false
			s.PageErr = nil
			return true
		}
		fetch = true
		s.PageLoading = true
		s.PageErr = nil
		return true
	})
	if !fetch {
		return
	}

	go func() {
		items, err := c.fetcher.FetchPage(ctx, page)
		if ctx.Err() != nil {
			return
		}
		applied := c.store.Update(func(s *state.Snapshot) bool {
			if c.pageSeq.Load() != seq {
				return false
			}
			s.PageLoading = false
			if err != nil {
				s.PageItems = nil
				s.PageFor = 0
				s.PageErr = err
				return true
			}
			s.PageItems = items
			s.PageFor = page
			s.PageErr = nil
			return true
		})
		switch {
		case !applied:
			c.logger.Debug("discarded stale page response", "page", page)
		case err != nil:
			c.logger.Error("load page", "page", page, "error", err)
		}
	}()
}

func (c *Controller) scheduleSearch(query string) {
	query = strings.TrimSpace(query)
	c.searchGen.Add(1)
	if query == "" {
		c.search.Cancel()
		c.setAwaitingIndex(false, "")
		c.store.Update(func(s *state.Snapshot) bool {
			changed := s.Filtering || s.SearchIDs != nil || s.SearchErr != nil || s.Searching
			s.Filtering = false
			s.SearchIDs = nil
			s.SearchErr = nil
			s.Searching = false
			return changed
		})
		return
	}
	c.search.Trigger(func() { c.runSearch(query) })
}

func (c *Controller) runSearch(query string) {
	if !c.running() {
		return
	}
	ctx := c.context()
	gen := c.searchGen.Add(1)
	current := func(s *state.Snapshot) bool {
		return c.searchGen.Load() == gen && s.Query == query
	}

	if !c.index.Ready() {
		err := search.ErrNotReady
		if idxErr := c.index.Err(); idxErr != nil {
			err = idxErr
		} else {
			c.setAwaitingIndex(true, query)
		}
		c.logger.Warn("search skipped, index not ready", "query", query, "state", c.index.State().String())
		c.store.Update(func(s *state.Snapshot) bool {
			if !current(s) {
				return false
			}
			s.Searching = false
			s.Filtering = true
			s.SearchIDs = []string{}
			s.SearchErr = err
			return true
		})
		return
	}

	c.setAwaitingIndex(false, "")
	c.store.Update(func(s *state.Snapshot) bool {
		if !current(s) {
			return false
		}
		s.Searching = true
		s.SearchErr = nil
		return true
	})

	started := time.Now()
	ids, err := c.index.PerformSearch(ctx, query)
	if ctx.Err() != nil {
		return
	}
	applied := c.store.Update(func(s *state.Snapshot) bool {
		if !current(s) {
			return false
		}
		s.Searching = false
		s.Filtering = true
		if err != nil {
			s.SearchIDs = []string{}
			s.SearchErr = err
			return true
		}
		if ids == nil {
			ids = []string{}
		}
		s.SearchIDs = ids
		s.SearchErr = nil
		return true
	})
	switch {
	case !applied:
		c.logger.Debug("discarded superseded search", "query", query)
	case err != nil:
		c.logger.Error("search failed", "query", query, "error", err)
	default:
		c.logger.Info("search complete", "query", query, "matches", len(ids), "elapsed", time.Since(started).Round(time.Millisecond))
	}
}

func (c *Controller) onIndexState(st search.State, err error) {
	c.store.Update(func(s *state.Snapshot) bool {
		if s.IndexState == st && (err == nil) == (s.IndexErr == nil) {
			return false
		}
		s.IndexState = st
		s.IndexErr = err
		return true
	})
	if st != search.StateReady {
		return
	}

	c.mu.Lock()
	retry, query := c.awaitingIndex, c.awaitingQuery
	c.awaitingIndex = false
	c.mu.Unlock()
	if retry && query == c.store.Snapshot().Query {
		c.logger.Info("search index ready, re-running search", "query", query)
		c.search.Trigger(func() { c.runSearch(query) })
	}
}

func (c *Controller) setAwaitingIndex(waiting bool, query string) {
	c.mu.Lock()
	c.awaitingIndex = waiting
	c.awaitingQuery = query
	c.mu.Unlock()
}

// String describes the controller state for logs.
func (c *Controller) String() string {
	s := c.store.Snapshot()
	return fmt.Sprintf("gallery{page=%d/%d query=%q items=%d}", s.Page, s.TotalPages(), s.Query, len(s.DisplayItems()))
}
