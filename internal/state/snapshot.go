package state

import (
	"errors"
	"time"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/search"
)

// User-facing messages for the combined error.
const (
	MsgIndexUnavailable = "Search is unavailable: the search index failed to load."
	MsgIndexNotReady    = "The search engine is not ready yet."
	MsgSearchFailed     = "An error occurred while searching."
	MsgDataFailed       = "There was a problem loading the gallery data."
)

// Snapshot is the gallery state at one point in time.
type Snapshot struct {
	Version     uint64
	LastUpdated time.Time

	// Navigation state, decoded from the location.
	Page  int
	Query string

	Cizelge        *catalog.Cizelge
	CizelgeLoading bool
	CizelgeErr     error

	// PageItems belong to PageFor. PageFor is zero when no page is held.
	PageItems   []catalog.GalleryItem
	PageFor     int
	PageLoading bool
	PageErr     error

	// SearchIDs is the search result. It only applies while Filtering is
	// set. Filtering with no ids means the search matched nothing.
	SearchIDs []string
	Filtering bool
	Searching bool
	SearchErr error

	IndexState search.State
	IndexErr   error
}

// MetadataLoaded reports whether the catalog summary is available.
func (s Snapshot) MetadataLoaded() bool {
	return s.Cizelge != nil
}

// TotalPages is the page count from the catalog summary, at least one.
func (s Snapshot) TotalPages() int {
	if s.Cizelge == nil {
		return 1
	}
	return s.Cizelge.PaginationInfo.Normalize().TotalPages
}

// TotalItems is the catalog size, zero before the summary loads.
func (s Snapshot) TotalItems() int {
	if s.Cizelge == nil {
		return 0
	}
	return s.Cizelge.PaginationInfo.TotalItems
}

// DisplayItems returns the current page's items, restricted to the search
// result while a filter is active. Page order is kept.
func (s Snapshot) DisplayItems() []catalog.GalleryItem {
	if !s.Filtering {
		return append([]catalog.GalleryItem(nil), s.PageItems...)
	}
	if len(s.SearchIDs) == 0 {
		return []catalog.GalleryItem{}
	}
	allowed := make(map[string]struct{}, len(s.SearchIDs))
	for _, id := range s.SearchIDs {
		allowed[id] = struct{}{}
	}
	out := make([]catalog.GalleryItem, 0, len(s.SearchIDs))
	for _, item := range s.PageItems {
		if _, ok := allowed[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Loading reports whether any fetch or search is in flight.
func (s Snapshot) Loading() bool {
	return s.CizelgeLoading || s.PageLoading || s.Searching
}

// CombinedError returns the most important error: index load failure, then
// search failure, then data fetch failure.
func (s Snapshot) CombinedError() error {
	switch {
	case s.IndexErr != nil:
		return s.IndexErr
	case s.SearchErr != nil:
		return s.SearchErr
	case s.CizelgeErr != nil:
		return s.CizelgeErr
	default:
		return s.PageErr
	}
}

// ErrorMessage maps CombinedError to a message for the user. It is empty
// when there is no error.
func (s Snapshot) ErrorMessage() string {
	switch {
	case s.IndexErr != nil:
		return MsgIndexUnavailable
	case s.SearchErr != nil:
		var loadErr *search.IndexLoadError
		if errors.As(s.SearchErr, &loadErr) {
			return MsgIndexUnavailable
		}
		if errors.Is(s.SearchErr, search.ErrNotReady) {
			return MsgIndexNotReady
		}
		return MsgSearchFailed
	case s.CizelgeErr != nil || s.PageErr != nil:
		return MsgDataFailed
	default:
		return ""
	}
}

// NoResults reports a settled search that matched nothing on this page.
func (s Snapshot) NoResults() bool {
	return s.Query != "" && s.Filtering && !s.Loading() &&
		s.CombinedError() == nil && len(s.DisplayItems()) == 0
}

// ShowTables reports whether the static tag and update tables apply.
func (s Snapshot) ShowTables() bool {
	return s.Query == "" && s.Page == 1 && s.Cizelge != nil
}

// ShowPagination reports whether page links apply.
func (s Snapshot) ShowPagination() bool {
	return s.Query == "" && s.TotalPages() > 1
}

// PageInRange reports whether Page is a valid page of the loaded catalog.
func (s Snapshot) PageInRange() bool {
	return s.Cizelge != nil && s.Page >= 1 && s.Page <= s.TotalPages()
}

// Settled reports whether the metadata, page and search for the current
// location have all finished, successfully or not.
func (s Snapshot) Settled() bool {
	if s.CizelgeLoading || s.PageLoading || s.Searching {
		return false
	}
	if s.Cizelge == nil {
		return s.CizelgeErr != nil
	}
	if s.PageInRange() && s.PageFor != s.Page && s.PageErr == nil {
		return false
	}
	if s.Query != "" && !s.Filtering && s.SearchErr == nil {
		return false
	}
	return true
}

func (s Snapshot) clone() Snapshot {
	dup := s
	if s.PageItems != nil {
		dup.PageItems = append([]catalog.GalleryItem{}, s.PageItems...)
	}
	if s.SearchIDs != nil {
		dup.SearchIDs = append([]string{}, s.SearchIDs...)
	}
	return dup
}
