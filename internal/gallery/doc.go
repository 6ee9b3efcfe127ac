// Package gallery owns the gallery state and keeps it in step with the
// navigation history.
//
// # Overview
//
// A Controller is the only writer of its state.Store. The UI and the
// headless printer read snapshots and ask the controller to navigate; the
// controller turns every location change into store updates and fetches.
//
//	history.Push ──> SyncFromLocation ──┬─> loadPage()        (page changed)
//	                                    └─> scheduleSearch()  (query changed)
//
// # Lifecycle
//
// Start attaches to the history and the search index, synchronizes from
// the current location, loads the catalog summary once and starts the
// index. Close stops pending searches, cancels in-flight fetches, detaches
// the subscriptions and closes the index. Both are idempotent.
//
// # Synchronizing from a location
//
// The location is parsed into page and query. Only fields that actually
// change are written, so repeating the same location is a no-op. A new
// query clears the previous result before the next search runs.
//
// # Catalog summary
//
// cizelge.json is fetched once. When it arrives a page outside
// [1, totalPages] is reset to 1 and the current page is loaded.
//
// # Page loads
//
// Each load takes a sequence number under the store lock. A response is
// applied only while its number is still the latest, so the last request
// wins even when responses arrive out of order. Pages outside the catalog
// are not fetched and show as empty.
//
// # Search
//
// Query changes are debounced (DefaultDebounce, 300ms) so a burst of edits
// runs one search for the final query. A blank query clears filtering
// immediately. While the index is loading the search settles with
// search.ErrNotReady and is re-run once when the index becomes ready, if the
// query is unchanged. An index failure is reported for every later query
// without calling the engine. Results from superseded searches are dropped.
package gallery
