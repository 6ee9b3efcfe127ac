package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tengrikut/galeri/internal/state"
)

// Run starts the browser and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a gallery controller")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	var stop func()
	if opts.Store != nil {
		stop = startPump(opts.Store, p.Send, m.logger)
	}
	final, err := p.Run()
	if stop != nil {
		stop()
	}
	if fm, ok := final.(Model); ok {
		fm.persistScroll()
	}
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// snapshotPump forwards store updates to the program. Store listeners run
// on whichever goroutine changed the state, so the listener only records
// the latest snapshot and a single goroutine delivers it. Bursts coalesce
// into the newest snapshot.
type snapshotPump struct {
	mu     sync.Mutex
	latest state.Snapshot
	signal chan struct{}
	done   chan struct{}
}

func startPump(store *state.Store, send func(tea.Msg), logger *slog.Logger) (stop func()) {
	pump := &snapshotPump{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	unsubscribe := store.Subscribe(func(s state.Snapshot) {
		pump.mu.Lock()
		pump.latest = s
		pump.mu.Unlock()
		select {
		case pump.signal <- struct{}{}:
		default:
		}
	})

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-pump.done:
				return
			case <-pump.signal:
				pump.mu.Lock()
				s := pump.latest
				pump.mu.Unlock()
				logger.Debug("snapshot", "version", s.Version, "summary", snapshotSummary(s))
				send(snapshotMsg(s))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(pump.done)
			<-finished
		})
	}
}
