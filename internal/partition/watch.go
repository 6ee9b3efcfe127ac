package partition

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce batches bursts of editor writes into one rebuild.
const DefaultWatchDebounce = 250 * time.Millisecond

// BuildFunc receives the outcome of every rebuild made by Watch.
type BuildFunc func(Result, error)

// Watch builds once, then rebuilds whenever a source file changes, until
// ctx is cancelled. Build failures are reported to onBuild and do not stop
// the watch.
func Watch(ctx context.Context, opts Options, debounce time.Duration, onBuild BuildFunc) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if onBuild == nil {
		onBuild = func(Result, error) {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(opts.SourceDir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.SourceDir, err)
	}

	onBuild(Run(ctx, opts))

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceFile(event.Name) || !rebuildOp(event.Op) {
				continue
			}
			logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-timerC:
			timerC = nil
			onBuild(Run(ctx, opts))
		}
	}
}

func isSourceFile(name string) bool {
	switch filepath.Base(name) {
	case ItemsFile, TablesFile:
		return true
	}
	return false
}

func rebuildOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
