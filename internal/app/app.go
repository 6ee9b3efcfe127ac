package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/config"
	"github.com/tengrikut/galeri/internal/gallery"
	"github.com/tengrikut/galeri/internal/logging"
	"github.com/tengrikut/galeri/internal/nav"
	"github.com/tengrikut/galeri/internal/prefs"
	"github.com/tengrikut/galeri/internal/search"
	"github.com/tengrikut/galeri/internal/state"
	"github.com/tengrikut/galeri/internal/ui"
)

const defaultHeadlessTimeout = 15 * time.Second

// Options configure a browsing session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/galeri/prefs.toml
	ScrollPath string // empty uses the user cache dir
	StartPath  string // initial location, "/" when empty
	SiteURL    string // overrides site_url from the config file

	// HeadlessTimeout bounds how long RunHeadless waits for the location
	// to settle. Zero uses 15s.
	HeadlessTimeout time.Duration
}

// session is the wired object graph shared by the TUI and headless modes.
type session struct {
	cfg       config.Config
	logger    *slog.Logger
	connector *search.Connector
	ctrl      *gallery.Controller
	closers   []io.Closer
}

func (s *session) close() {
	if s.ctrl != nil {
		s.ctrl.Close()
	}
	if s.connector != nil {
		s.connector.Close()
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
}

func startLocation(path string) string {
	if strings.TrimSpace(path) == "" {
		return "/"
	}
	r := nav.Parse(path)
	return nav.BuildPath(r.Page, r.Query)
}

func newSession(opts Options, logger *slog.Logger) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load galeri config: %w", err)
	}
	if site := strings.TrimSpace(opts.SiteURL); site != "" {
		cfg.SiteURL = site
	}

	s := &session{cfg: cfg, logger: logger}
	if s.logger == nil {
		fileLogger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			// The browser still works without a log file.
			s.logger = logging.Discard()
		} else {
			s.logger = fileLogger
			s.closers = append(s.closers, closer)
		}
	}

	client, err := catalog.NewClient(cfg.SiteURL, cfg.RequestTimeout)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	s.connector = search.NewConnector(search.Options{
		Load:         search.HTTPLoader(client, catalog.SearchIndexPath),
		PollInterval: cfg.IndexPollInterval,
		PollTimeout:  cfg.IndexPollTimeout,
		Logger:       s.logger.With("component", "search"),
	})

	s.ctrl, err = gallery.New(gallery.Options{
		Fetcher:  client,
		Index:    s.connector,
		History:  nav.NewHistory(startLocation(opts.StartPath)),
		Debounce: cfg.Debounce,
		Logger:   s.logger.With("component", "gallery"),
	})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("init gallery: %w", err)
	}
	s.logger.Info("session ready", "site", client.BaseURL(), "start", s.ctrl.Location())
	return s, nil
}

// Run boots the galeri TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	sess, err := newSession(opts, nil)
	if err != nil {
		return err
	}
	defer sess.close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	scrollPath := opts.ScrollPath
	if scrollPath == "" {
		scrollPath = prefs.DefaultScrollPath()
	}

	sess.ctrl.Start(ctx)

	return ui.Run(ctx, ui.Options{
		Controller: sess.ctrl,
		Store:      sess.ctrl.Store(),
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Scroll:     prefs.LoadScrollStore(scrollPath),
		LogFile:    sess.cfg.LogFile,
		LogLevel:   logging.ParseLevel(sess.cfg.LogLevel),
		Debounce:   sess.cfg.Debounce,
		Logger:     sess.logger.With("component", "ui"),
	})
}

// RunHeadless resolves a single location without a terminal UI and writes
// the displayed items to w, one tab-separated line per item. A location
// that settles with an error returns that error after printing whatever
// items were available.
func RunHeadless(ctx context.Context, opts Options, w io.Writer, logger *slog.Logger) error {
	sess, err := newSession(opts, logger)
	if err != nil {
		return err
	}
	defer sess.close()

	timeout := opts.HeadlessTimeout
	if timeout <= 0 {
		timeout = defaultHeadlessTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sess.ctrl.Start(ctx)
	snap, err := waitSettled(ctx, sess.ctrl.Store(), headlessPollInterval)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", sess.ctrl.Location(), err)
	}
	if err := writeItems(w, snap); err != nil {
		return err
	}
	if msg := snap.ErrorMessage(); msg != "" {
		sess.logger.Warn("location settled with error", "location", sess.ctrl.Location(), "error", snap.CombinedError())
		return fmt.Errorf("%s (%w)", msg, snap.CombinedError())
	}
	return nil
}

func writeItems(w io.Writer, snap state.Snapshot) error {
	for _, item := range snap.DisplayItems() {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Href, item.ImageSource, item.AltText, strings.Join(item.Tags, ","))
		if err != nil {
			return fmt.Errorf("write items: %w", err)
		}
	}
	return nil
}
