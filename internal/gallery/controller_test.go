package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/nav"
	"github.com/tengrikut/galeri/internal/search"
	"github.com/tengrikut/galeri/internal/state"
)

const testDebounce = 30 * time.Millisecond

type fakeFetcher struct {
	mu         sync.Mutex
	cizelge    *catalog.Cizelge
	cizelgeErr error
	pages      map[int][]catalog.GalleryItem
	pageErr    error
	gates      map[int]chan struct{}
	pageCalls  []int
}

func newFakeFetcher(totalItems int) *fakeFetcher {
	f := &fakeFetcher{
		cizelge: &catalog.Cizelge{
			Tags:           []catalog.TableRow{{Href: "/etiket/kedi", Text: "kedi", Label: "2"}},
			PaginationInfo: catalog.PaginationInfo{TotalItems: totalItems, ItemsPerPage: 2}.Normalize(),
		},
		pages: make(map[int][]catalog.GalleryItem),
		gates: make(map[int]chan struct{}),
	}
	for p := 1; p <= f.cizelge.PaginationInfo.TotalPages; p++ {
		f.pages[p] = []catalog.GalleryItem{
			{ID: fmt.Sprintf("p%d-a", p), AltText: "kedi"},
			{ID: fmt.Sprintf("p%d-b", p), AltText: "köpek"},
		}
	}
	return f
}

func (f *fakeFetcher) FetchCizelge(context.Context) (*catalog.Cizelge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cizelge, f.cizelgeErr
}

func (f *fakeFetcher) FetchPage(ctx context.Context, page int) ([]catalog.GalleryItem, error) {
	f.mu.Lock()
	f.pageCalls = append(f.pageCalls, page)
	gate := f.gates[page]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.pages[page], nil
}

func (f *fakeFetcher) FetchAsset(context.Context, string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeFetcher) gate(page int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[page] = ch
	return ch
}

func (f *fakeFetcher) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.pageCalls...)
}

type fakeIndex struct {
	mu         sync.Mutex
	state      search.State
	err        error
	startState search.State
	startErr   error
	results    map[string][]string
	searchErr  error
	queries    []string
	listeners  map[int]func(search.State, error)
	nextID     int
	closed     bool
	startCalls int
}

func newFakeIndex(startState search.State) *fakeIndex {
	return &fakeIndex{
		startState: startState,
		results:    make(map[string][]string),
		listeners:  make(map[int]func(search.State, error)),
	}
}

func (x *fakeIndex) Start(context.Context) {
	x.mu.Lock()
	x.startCalls++
	x.mu.Unlock()
	x.transition(x.startState, x.startErr)
}

func (x *fakeIndex) transition(st search.State, err error) {
	x.mu.Lock()
	x.state, x.err = st, err
	fns := make([]func(search.State, error), 0, len(x.listeners))
	for _, fn := range x.listeners {
		fns = append(fns, fn)
	}
	x.mu.Unlock()
	for _, fn := range fns {
		fn(st, err)
	}
}

func (x *fakeIndex) State() search.State {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

func (x *fakeIndex) Ready() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state == search.StateReady && !x.closed
}

func (x *fakeIndex) Err() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

func (x *fakeIndex) Subscribe(fn func(search.State, error)) func() {
	x.mu.Lock()
	id := x.nextID
	x.nextID++
	x.listeners[id] = fn
	x.mu.Unlock()
	return func() {
		x.mu.Lock()
		delete(x.listeners, id)
		x.mu.Unlock()
	}
}

func (x *fakeIndex) PerformSearch(_ context.Context, query string) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queries = append(x.queries, query)
	if x.searchErr != nil {
		return nil, x.searchErr
	}
	return x.results[query], nil
}

func (x *fakeIndex) Close() {
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()
}

func (x *fakeIndex) searched() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.queries...)
}

func (x *fakeIndex) listenerCount() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.listeners)
}

type harness struct {
	ctrl    *Controller
	fetcher *fakeFetcher
	index   *fakeIndex
	history *nav.History
}

func newHarness(t *testing.T, location string, fetcher *fakeFetcher, index *fakeIndex) *harness {
	t.Helper()
	history := nav.NewHistory(location)
	ctrl, err := New(Options{
		Fetcher:  fetcher,
		Index:    index,
		History:  history,
		Debounce: testDebounce,
	})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	ctrl.Start(context.Background())
	return &harness{ctrl: ctrl, fetcher: fetcher, index: index, history: history}
}

func (h *harness) waitFor(t *testing.T, cond func(state.Snapshot) bool, msg string) state.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.ctrl.Snapshot()) }, 2*time.Second, 5*time.Millisecond, msg)
	return h.ctrl.Snapshot()
}

func ids(items []catalog.GalleryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{Fetcher: newFakeFetcher(1)})
	assert.Error(t, err)
	_, err = New(Options{Fetcher: newFakeFetcher(1), Index: newFakeIndex(search.StateReady)})
	assert.Error(t, err)
}

func TestController_OutOfRangePageResetsToFirst(t *testing.T) {
	h := newHarness(t, "/5", newFakeFetcher(6), newFakeIndex(search.StateReady))

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Settled() && s.PageFor == 1 }, "first page loaded")
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 3, snap.TotalPages())
	assert.Equal(t, []string{"p1-a", "p1-b"}, ids(snap.DisplayItems()))
	assert.True(t, snap.ShowTables())
	assert.NotContains(t, h.fetcher.calls(), 5, "an out-of-range page must never be fetched")
}

func TestController_SyncIsIdempotent(t *testing.T) {
	h := newHarness(t, "/2", newFakeFetcher(6), newFakeIndex(search.StateReady))
	before := h.waitFor(t, func(s state.Snapshot) bool { return s.Settled() && s.PageFor == 2 }, "page 2 loaded")
	calls := len(h.fetcher.calls())

	h.ctrl.SyncFromLocation()
	h.ctrl.SyncFromLocation()

	after := h.ctrl.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Len(t, h.fetcher.calls(), calls)
}

func TestController_NavigateLoadsPage(t *testing.T) {
	h := newHarness(t, "/", newFakeFetcher(6), newFakeIndex(search.StateReady))
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 }, "page 1 loaded")

	require.True(t, h.ctrl.GoToPage(3))
	assert.Equal(t, "/3", h.history.Location())
	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 3 }, "page 3 loaded")
	assert.Equal(t, []string{"p3-a", "p3-b"}, ids(snap.DisplayItems()))
	assert.False(t, snap.ShowTables())
	assert.False(t, h.ctrl.Navigate("/3"), "navigating to the current location is a no-op")

	require.True(t, h.ctrl.Back())
	h.waitFor(t, func(s state.Snapshot) bool { return s.Page == 1 && s.PageFor == 1 }, "back to page 1")
	require.True(t, h.ctrl.Forward())
	h.waitFor(t, func(s state.Snapshot) bool { return s.Page == 3 && s.PageFor == 3 }, "forward to page 3")
}

func TestController_LastPageRequestWins(t *testing.T) {
	fetcher := newFakeFetcher(6)
	h := newHarness(t, "/", fetcher, newFakeIndex(search.StateReady))
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 }, "page 1 loaded")

	slow := fetcher.gate(2)
	h.ctrl.GoToPage(2)
	h.ctrl.GoToPage(3)
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 3 && !s.PageLoading }, "page 3 loaded")

	close(slow)
	require.Eventually(t, func() bool {
		calls := fetcher.calls()
		return len(calls) >= 3 && calls[len(calls)-2] == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, 3, snap.PageFor, "a stale page response must be discarded")
	assert.Equal(t, []string{"p3-a", "p3-b"}, ids(snap.DisplayItems()))
}

func TestController_DebounceRunsOnlyFinalQuery(t *testing.T) {
	index := newFakeIndex(search.StateReady)
	index.results["kedi"] = []string{"p1-a"}
	h := newHarness(t, "/", newFakeFetcher(6), index)
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 }, "page 1 loaded")

	for _, q := range []string{"k", "ke", "ked", "kedi"} {
		h.ctrl.Search(q)
	}
	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Filtering && !s.Searching }, "search applied")
	time.Sleep(3 * testDebounce)

	assert.Equal(t, []string{"kedi"}, index.searched())
	assert.Equal(t, "kedi", snap.Query)
	assert.Equal(t, []string{"p1-a"}, ids(snap.DisplayItems()))
	assert.False(t, snap.ShowPagination())
}

func TestController_SearchFiltersCurrentPageOnly(t *testing.T) {
	index := newFakeIndex(search.StateReady)
	index.results["kedi"] = []string{"p2-a", "p1-a", "p3-a"}
	h := newHarness(t, "/ara/kedi", newFakeFetcher(6), index)

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Settled() && s.Filtering }, "search settled")
	assert.Equal(t, []string{"p1-a"}, ids(snap.DisplayItems()))
}

func TestController_ClearingQueryRestoresUnfilteredPage(t *testing.T) {
	index := newFakeIndex(search.StateReady)
	index.results["kedi"] = []string{"p1-a"}
	h := newHarness(t, "/ara/kedi", newFakeFetcher(6), index)
	h.waitFor(t, func(s state.Snapshot) bool { return s.Settled() && s.Filtering }, "search settled")

	h.ctrl.Search("   ")
	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Query == "" }, "query cleared")
	assert.False(t, snap.Filtering)
	assert.Nil(t, snap.SearchIDs)
	assert.Equal(t, []string{"p1-a", "p1-b"}, ids(snap.DisplayItems()))
	assert.Equal(t, "/", h.history.Location())
}

func TestController_FailedIndexYieldsEmptyResultWithoutSearching(t *testing.T) {
	index := newFakeIndex(search.StateFailed)
	index.startErr = &search.IndexLoadError{Reason: search.ReasonTimeout}
	h := newHarness(t, "/", newFakeFetcher(6), index)
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 && s.IndexState == search.StateFailed }, "settled with failed index")

	h.ctrl.Search("kedi")
	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Filtering }, "readiness error applied")
	assert.NotNil(t, snap.SearchIDs)
	assert.Empty(t, snap.SearchIDs)
	assert.Empty(t, snap.DisplayItems())
	assert.Equal(t, state.MsgIndexUnavailable, snap.ErrorMessage())
	assert.False(t, snap.NoResults(), "an error replaces the no-results message")
	assert.Empty(t, index.searched())
}

func TestController_SearchErrorSetsEmptyResult(t *testing.T) {
	index := newFakeIndex(search.StateReady)
	index.searchErr = &search.SearchExecutionError{Query: "kedi", Err: errors.New("boom")}
	h := newHarness(t, "/ara/kedi", newFakeFetcher(6), index)

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.SearchErr != nil }, "search error applied")
	assert.True(t, snap.Filtering)
	assert.Empty(t, snap.SearchIDs)
	assert.Equal(t, state.MsgSearchFailed, snap.ErrorMessage())
	assert.Equal(t, search.StateReady, snap.IndexState, "a failed search does not affect readiness")
}

func TestController_SearchRerunsWhenIndexBecomesReady(t *testing.T) {
	index := newFakeIndex(search.StateLoading)
	index.results["kedi"] = []string{"p1-a"}
	h := newHarness(t, "/ara/kedi", newFakeFetcher(6), index)

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.SearchErr != nil }, "readiness error applied")
	assert.Equal(t, state.MsgIndexNotReady, snap.ErrorMessage())
	assert.Empty(t, index.searched())

	index.transition(search.StateReady, nil)
	snap = h.waitFor(t, func(s state.Snapshot) bool { return s.SearchErr == nil && len(s.SearchIDs) == 1 }, "search re-run")
	assert.Equal(t, []string{"kedi"}, index.searched())
	assert.Equal(t, []string{"p1-a"}, ids(snap.DisplayItems()))
}

func TestController_DataFailureMessage(t *testing.T) {
	fetcher := newFakeFetcher(6)
	fetcher.pageErr = &catalog.NetworkError{URL: "/json/page-1.json", StatusCode: 503}
	h := newHarness(t, "/", fetcher, newFakeIndex(search.StateReady))

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.PageErr != nil }, "page error applied")
	assert.Equal(t, state.MsgDataFailed, snap.ErrorMessage())
	assert.True(t, snap.Settled())
}

func TestController_MetadataFailureBlocksPageFetch(t *testing.T) {
	fetcher := newFakeFetcher(6)
	fetcher.cizelgeErr = &catalog.ParseError{URL: "/json/cizelge.json", Err: errors.New("eof")}
	fetcher.cizelge = nil
	h := newHarness(t, "/2", fetcher, newFakeIndex(search.StateReady))

	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.CizelgeErr != nil }, "metadata error applied")
	assert.Equal(t, state.MsgDataFailed, snap.ErrorMessage())
	assert.Empty(t, fetcher.calls())
}

func TestController_OutOfRangeNavigationHasNoData(t *testing.T) {
	h := newHarness(t, "/", newFakeFetcher(6), newFakeIndex(search.StateReady))
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 }, "page 1 loaded")

	h.ctrl.GoToPage(40)
	snap := h.waitFor(t, func(s state.Snapshot) bool { return s.Page == 40 }, "navigated")
	assert.Zero(t, snap.PageFor)
	assert.Empty(t, snap.DisplayItems())
	assert.NotContains(t, h.fetcher.calls(), 40)
}

func TestController_CloseDetaches(t *testing.T) {
	index := newFakeIndex(search.StateReady)
	h := newHarness(t, "/", newFakeFetcher(6), index)
	h.waitFor(t, func(s state.Snapshot) bool { return s.PageFor == 1 }, "page 1 loaded")

	h.ctrl.Search("kedi")
	h.ctrl.Close()
	h.ctrl.Close()

	assert.Zero(t, index.listenerCount())
	assert.True(t, index.closed)
	assert.False(t, h.ctrl.Navigate("/2"))

	h.history.Push("/3")
	time.Sleep(3 * testDebounce)
	snap := h.ctrl.Snapshot()
	assert.Equal(t, 1, snap.Page, "history changes after Close must not reach the controller")
	assert.Equal(t, search.StateUnstarted, snap.IndexState)
	assert.Empty(t, index.searched(), "a pending debounced search is cancelled by Close")
}
