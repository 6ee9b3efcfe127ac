// Package state holds the gallery's observable state.
//
// # Overview
//
// A Store owns one Snapshot. The gallery controller is the only writer. It
// mutates the snapshot through Update. The terminal UI and the headless
// printer are readers. They either pull with Snapshot or push-subscribe with
// Subscribe.
//
//	Controller                          UI
//	┌──────────────────────┐            ┌──────────────────────┐
//	│ store.Update(fn)     │──notify───→│ Subscribe callback   │
//	│   fn reports change  │            │   compare Version    │
//	└──────────────────────┘            │   render snapshot    │
//	                                    └──────────────────────┘
//
// # Derived state
//
// Snapshot methods compute everything the presentation needs:
//
//   - DisplayItems: page items, filtered by search ids while Filtering
//   - CombinedError / ErrorMessage: index load > search > data fetch
//   - NoResults, ShowTables, ShowPagination
//   - Settled: nothing outstanding for the current location
//
// A nil SearchIDs with Filtering unset means "no filter". Filtering with an
// empty SearchIDs means the search ran and matched nothing.
//
// # Copying
//
// Snapshot and the values passed to subscribers are copies. Item and id
// slices are cloned. The catalog summary pointer is shared and treated as
// immutable.
package state
