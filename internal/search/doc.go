// Package search connects the gallery to the search index asset.
//
// # Lifecycle
//
//	Unstarted ──Start──> Loading ──┬─> Ready   (engine registered)
//	                               └─> Failed  (load error or timeout)
//
// Start launches one worker goroutine. The worker runs the LoadFunc, which
// fetches the asset and installs an engine into a searchindex.Scope, then
// polls the scope every PollInterval (100ms) until an engine appears or
// PollTimeout (3s) passes. A failure is an *IndexLoadError and is final for
// the connector. Subscribers are told about every transition and Wait
// blocks until Ready, Failed or Close.
//
// # Searching
//
// PerformSearch sends a typed request to the worker and waits for the reply,
// so searches run one at a time off the caller's goroutine. It returns
// ErrNotReady in any state but Ready and ErrClosed after Close. Callers
// read Err to tell a failed index from one that is still loading.
//
// The worker resolves every hit concurrently. A hit maps to meta.id when
// present, otherwise to its top-level id. Hits without an id are dropped
// and duplicates keep their first position. A failing or malformed search
// returns a *SearchExecutionError and leaves the connector Ready. Panics in
// the loader or the engine are recovered and logged.
//
// # Teardown
//
// Close cancels the worker, waits for it to exit and detaches listeners.
// It is safe to call more than once.
package search
