package app

import (
	"context"
	"errors"
	"time"

	"github.com/tengrikut/galeri/internal/search"
	"github.com/tengrikut/galeri/internal/state"
)

const headlessPollInterval = 50 * time.Millisecond

// waitSettled polls the store at a fixed cadence until the current location
// has finished loading. Store notifications also wake the loop so a fast
// site does not pay a full interval.
func waitSettled(ctx context.Context, store *state.Store, interval time.Duration) (state.Snapshot, error) {
	if interval <= 0 {
		interval = headlessPollInterval
	}
	wake := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(state.Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap := store.Snapshot()
		if resolved(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-wake:
		case <-ticker.C:
		}
	}
}

// resolved is Settled with a finished index load, so an index failure is
// always reported. A search skipped because the index was still loading is
// not final: the controller re-runs it once the index is ready.
func resolved(snap state.Snapshot) bool {
	if !snap.Settled() || !snap.IndexState.Terminal() {
		return false
	}
	if errors.Is(snap.SearchErr, search.ErrNotReady) {
		return snap.IndexState == search.StateFailed
	}
	return true
}
