// Package server serves a built gallery directory over HTTP for local
// browsing and for the terminal client.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tengrikut/galeri/internal/nav"
)

// DefaultAddr matches the default site_url of the client.
const DefaultAddr = "127.0.0.1:4321"

const (
	indexFile       = "index.html"
	shutdownTimeout = 5 * time.Second
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "galeri",
	Subsystem: "server",
	Name:      "requests_total",
	Help:      "Requests served, by kind of response",
}, []string{"kind", "status"})

// Options configure the static server.
type Options struct {
	Addr   string
	Dir    string
	Logger *slog.Logger
}

// New returns a handler serving files below opts.Dir. Gallery locations
// such as /3, /ara/kuş or /ara/v1.2, and other extension-less paths that
// match no file, are answered with the site's index.html so they load the
// page shell. Prometheus metrics are exposed on /metrics.
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Set(kindKey, "rejected")
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		clean := path.Clean("/" + c.Request.URL.Path)
		target := filepath.Join(dir, filepath.FromSlash(clean))
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			c.Set(kindKey, "file")
			c.File(target)
			return
		}
		if galleryRoute(clean) || path.Ext(clean) == "" {
			shell := filepath.Join(dir, indexFile)
			if _, err := os.Stat(shell); err == nil {
				c.Set(kindKey, "shell")
				c.File(shell)
				return
			}
		}
		c.Set(kindKey, "missing")
		c.String(http.StatusNotFound, "not found")
	})
	return r
}

const kindKey = "galeri.kind"

// galleryRoute reports whether clean is a gallery location: a page number
// or anything under the search segment. Queries may contain dots, so these
// paths are matched before the extension check.
func galleryRoute(clean string) bool {
	first, _, _ := strings.Cut(strings.TrimPrefix(clean, "/"), "/")
	if first == nav.SearchSegment {
		return true
	}
	if first == "" || strings.Contains(clean[1:], "/") {
		return false
	}
	for _, r := range first {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		kind := c.GetString(kindKey)
		if kind == "" {
			kind = "route"
		}
		requestsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"kind", kind,
			"elapsed", time.Since(start),
		)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	if info, err := os.Stat(opts.Dir); err != nil || !info.IsDir() {
		return fmt.Errorf("serve directory %q is not readable", opts.Dir)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving gallery", "addr", addr, "dir", opts.Dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
