// Package app is the composition root of the galeri browser.
//
// # Overview
//
// It wires configuration, logging, the catalog client, the search
// connector and the gallery controller together, then hands the controller
// to the terminal UI or resolves one location without a terminal.
//
// # Components
//
//   - app.go: Run (TUI) and RunHeadless (plain output) over a shared session
//   - wait.go: the loop that waits for a location to settle in headless mode
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read galeri config
//	       ├─────> logging.OpenFile()    Log to the configured file
//	       ├─────> catalog.NewClient()   HTTP client for the site
//	       ├─────> search.NewConnector() Lazy search index
//	       ├─────> gallery.New()         Controller over history and store
//	       ├─────> ctrl.Start()          Metadata, page and index loads
//	       └─────> ui.Run()              Start TUI (blocks)
//
// # Headless Mode
//
// RunHeadless starts the same session, waits until the metadata, page and
// search for the start location have finished and the search index has
// either loaded or failed, and prints the displayed
// items as tab-separated lines:
//
//	id	href	imgSrc	alt	tag1,tag2
//
// A search that was skipped because the index was still loading does not
// count as finished. The controller re-runs it when the index becomes
// ready. The wait is bounded by Options.HeadlessTimeout.
//
// # Error Handling
//
// Fatal errors (returned from Run and RunHeadless):
//   - Configuration file unreadable or invalid
//   - Site URL that cannot be parsed
//
// Recoverable errors (shown in the UI, logged):
//   - Metadata, page or index fetch failures
//   - Search failures
//
// A log file that cannot be opened only disables logging.
package app
