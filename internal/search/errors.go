package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by PerformSearch before the index is Ready.
	ErrNotReady = errors.New("search index is not ready")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("search connector closed")
)

// Reasons an index load can fail.
const (
	ReasonAsset     = "asset failed to load"
	ReasonTimeout   = "timed out waiting for search capability"
	ReasonCancelled = "load cancelled"
)

// IndexLoadError reports why the connector ended in StateFailed.
type IndexLoadError struct {
	Reason string
	Err    error
}

func (e *IndexLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load search index: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("load search index: %s", e.Reason)
}

func (e *IndexLoadError) Unwrap() error { return e.Err }

// SearchExecutionError reports a failed or malformed search call.
type SearchExecutionError struct {
	Query string
	Err   error
}

func (e *SearchExecutionError) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *SearchExecutionError) Unwrap() error { return e.Err }
