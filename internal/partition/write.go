package partition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/searchindex"
)

const (
	jsonDir        = "json"
	indexDir       = "pagefind"
	indexFile      = "pagefind.json"
	cizelgeFile    = "cizelge.json"
	lockFile       = ".galeri-build.lock"
	writeParallel  = 8
	lockRetryDelay = 200 * time.Millisecond
)

// Write stores a partitioned catalog under dir. Page files are written
// concurrently, and page files left over from a larger earlier build are
// removed.
func Write(ctx context.Context, dir string, res Result) error {
	jsonPath := filepath.Join(dir, jsonDir)
	if err := os.MkdirAll(jsonPath, 0o755); err != nil {
		return fmt.Errorf("create json dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeParallel)
	for i, page := range res.Pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeJSON(filepath.Join(jsonPath, catalog.PageFileName(i+1)), page)
		})
	}
	g.Go(func() error {
		return writeJSON(filepath.Join(jsonPath, cizelgeFile), res.Cizelge)
	})
	g.Go(func() error {
		return searchindex.Write(filepath.Join(dir, indexDir, indexFile), res.Index)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return pruneStalePages(jsonPath, len(res.Pages))
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func pruneStalePages(jsonPath string, keep int) error {
	entries, err := os.ReadDir(jsonPath)
	if err != nil {
		return fmt.Errorf("list json dir: %w", err)
	}
	for _, e := range entries {
		n, ok := pageNumber(e.Name())
		if !ok || n <= keep {
			continue
		}
		if err := os.Remove(filepath.Join(jsonPath, e.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s: %w", e.Name(), err)
		}
	}
	return nil
}

func pageNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".json"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// acquireBuildLock takes the exclusive build lock for dir, retrying until
// timeout.
func acquireBuildLock(ctx context.Context, dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}, fmt.Errorf("create build dir: %w", err)
	}
	lockPath := filepath.Join(dir, lockFile)
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire build lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another build is in progress (lock: %s)", lockPath)
		}
		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}
