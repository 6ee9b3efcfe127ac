package partition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tengrikut/galeri/internal/catalog"
)

// Source file names inside Options.SourceDir.
const (
	ItemsFile   = "sunum.json"
	TablesFile  = "cizelge.json"
	defaultLock = 10 * time.Second
)

// Options configure a build.
type Options struct {
	SourceDir    string
	OutDir       string
	ItemsPerPage int           // zero uses catalog.DefaultItemsPerPage
	LockTimeout  time.Duration // zero uses ten seconds
	Logger       *slog.Logger
}

// Run reads the source catalog, partitions it and writes the output while
// holding the build lock.
func Run(ctx context.Context, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perPage := opts.ItemsPerPage
	if perPage <= 0 {
		perPage = catalog.DefaultItemsPerPage
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultLock
	}

	started := time.Now()
	var raw []RawItem
	if err := readJSON(filepath.Join(opts.SourceDir, ItemsFile), &raw); err != nil {
		return Result{}, err
	}
	var tables RawCizelge
	if err := readJSON(filepath.Join(opts.SourceDir, TablesFile), &tables); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Result{}, err
		}
		logger.Warn("tables source missing, writing empty tables", "path", filepath.Join(opts.SourceDir, TablesFile))
	}

	res, err := Split(raw, tables, perPage, logger)
	if err != nil {
		return Result{}, err
	}

	unlock, err := acquireBuildLock(ctx, opts.OutDir, timeout)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	if err := Write(ctx, opts.OutDir, res); err != nil {
		return Result{}, err
	}
	logger.Info("catalog partitioned",
		"items", res.TotalItems(),
		"pages", len(res.Pages),
		"skipped", res.Skipped,
		"out", opts.OutDir,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return res, nil
}

func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
