// Package ui is the terminal gallery browser built on Bubble Tea.
//
// # Layout
//
// From top to bottom the screen shows:
//
//   - Header: location, page position, catalog size, search index state
//   - Search bar: the active query, or the text input while editing
//   - Status: the single user-facing error, the no-results notice or the
//     out-of-range notice
//   - Static tables: tags (three columns) and recent updates (two columns),
//     only on page 1 without a query and only when they fit
//   - Item list: the display items of the current page, pinned items marked
//   - Pagination bar: see PaginationLinks, hidden while a query is active
//   - Detail: link and image of the selected item
//   - Footer: short key help, then the optional log panel
//
// # Data Flow
//
// The model never mutates gallery state itself. Key presses become commands
// that call the Controller (Search, GoToPage, Back, Forward) off the event
// loop. The controller writes to the state store, and Run forwards store
// updates to the program through a coalescing pump, so the view always
// renders the newest snapshot.
//
// # Search Bar
//
// "/" focuses the input. Typing submits after a quiet period (300ms by
// default), Enter submits at once and Esc restores the active query. A
// submitted query navigates to /ara/{query}; an empty one returns to /.
//
// # Persistence
//
// Cycling the theme (T) and toggling the log panel (L) are saved to the
// preferences file. The selected row is remembered per location in a
// prefs.ScrollStore and restored when the location is visited again.
package ui
