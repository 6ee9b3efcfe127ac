package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tengrikut/galeri/internal/searchindex"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultPollTimeout  = 3000 * time.Millisecond
)

var errMalformedResponse = errors.New("search returned no response")

// LoadFunc loads the index asset. A successful load is expected to make a
// searcher appear on scope, possibly some time after LoadFunc returns.
type LoadFunc func(ctx context.Context, scope *searchindex.Scope) error

// Options configure a Connector.
type Options struct {
	Load         LoadFunc
	Scope        *searchindex.Scope // nil uses a private scope
	PollInterval time.Duration      // zero uses 100ms
	PollTimeout  time.Duration      // zero uses 3s
	Logger       *slog.Logger
}

// Connector owns the search index lifecycle. A single worker goroutine loads
// the index, waits for the searcher to register, then serves search requests
// one at a time.
type Connector struct {
	load         LoadFunc
	scope        *searchindex.Scope
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger

	requests chan request
	done     chan struct{}
	settled  chan struct{}

	mu         sync.Mutex
	state      State
	err        error
	closed     bool
	cancel     context.CancelFunc
	listeners  map[int]func(State, error)
	nextID     int
	settleOnce sync.Once
}

type request struct {
	ctx   context.Context
	query string
	reply chan response
}

type response struct {
	ids []string
	err error
}

// NewConnector builds an unstarted connector.
func NewConnector(opts Options) *Connector {
	scope := opts.Scope
	if scope == nil {
		scope = &searchindex.Scope{}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		load:         opts.Load,
		scope:        scope,
		pollInterval: interval,
		pollTimeout:  timeout,
		logger:       logger.With("component", "search"),
		requests:     make(chan request),
		done:         make(chan struct{}),
		settled:      make(chan struct{}),
		listeners:    make(map[int]func(State, error)),
	}
}

// Start begins loading the index. Only the first call has an effect.
func (c *Connector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.state != StateUnstarted {
		c.mu.Unlock()
		return
	}
	c.state = StateLoading
	wctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("loading search index")
	c.emit(StateLoading, nil)
	go c.run(wctx)
}

// State returns the lifecycle state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether searches can be served.
func (c *Connector) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady && !c.closed
}

// Err returns the *IndexLoadError once the connector has failed.
func (c *Connector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Wait blocks until the connector is Ready, Failed or closed, or ctx ends.
func (c *Connector) Wait(ctx context.Context) State {
	select {
	case <-c.settled:
	case <-ctx.Done():
	}
	return c.State()
}

// Subscribe registers fn for state transitions. fn runs outside the
// connector's lock on the goroutine making the transition, which may be the
// worker itself, so fn must not call PerformSearch synchronously.
func (c *Connector) Subscribe(fn func(State, error)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// PerformSearch runs query on the worker and returns matching gallery ids.
// A blank query returns an empty result without touching the index.
func (c *Connector) PerformSearch(ctx context.Context, query string) ([]string, error) {
	c.mu.Lock()
	closed, state := c.closed, c.state
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if state != StateReady {
		return nil, ErrNotReady
	}

	req := request{ctx: ctx, query: query, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.ids, resp.err
	case <-c.done:
		select {
		case resp := <-req.reply:
			return resp.ids, resp.err
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker and detaches listeners. It is safe to call more
// than once.
func (c *Connector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	started := c.state != StateUnstarted
	c.listeners = make(map[int]func(State, error))
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-c.done
	}
	c.settleOnce.Do(func() { close(c.settled) })
}

func (c *Connector) run(ctx context.Context) {
	defer close(c.done)

	searcher, err := c.loadIndex(ctx)
	if err != nil {
		c.finish(StateFailed, err)
		return
	}
	c.finish(StateReady, nil)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			ids, err := c.execute(ctx, req, searcher)
			req.reply <- response{ids: ids, err: err}
		}
	}
}

func (c *Connector) loadIndex(ctx context.Context) (s searchindex.Searcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("search index loader panicked", "panic", r)
			s, err = nil, &IndexLoadError{Reason: ReasonAsset, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if c.load != nil {
		if err := c.load(ctx, c.scope); err != nil {
			if ctx.Err() != nil {
				return nil, &IndexLoadError{Reason: ReasonCancelled, Err: ctx.Err()}
			}
			return nil, &IndexLoadError{Reason: ReasonAsset, Err: err}
		}
	}
	if s := c.scope.Lookup(); s != nil {
		return s, nil
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(c.pollTimeout)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, &IndexLoadError{Reason: ReasonCancelled, Err: ctx.Err()}
		case <-deadline.C:
			return nil, &IndexLoadError{Reason: ReasonTimeout}
		case <-ticker.C:
			if s := c.scope.Lookup(); s != nil {
				return s, nil
			}
		}
	}
}

func (c *Connector) execute(workerCtx context.Context, req request, s searchindex.Searcher) (ids []string, err error) {
	query := strings.TrimSpace(req.query)
	if query == "" {
		return []string{}, nil
	}

	ctx, cancel := context.WithCancel(req.ctx)
	defer cancel()
	stop := context.AfterFunc(workerCtx, cancel)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("search panicked", "query", query, "panic", r)
			ids, err = nil, &SearchExecutionError{Query: query, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	resp, err := s.Search(ctx, query)
	if err != nil {
		c.logger.Warn("search failed", "query", query, "error", err)
		return nil, &SearchExecutionError{Query: query, Err: err}
	}
	if resp == nil {
		c.logger.Warn("search returned no response", "query", query)
		return nil, &SearchExecutionError{Query: query, Err: errMalformedResponse}
	}

	ids = resolveIDs(ctx, resp.Results, c.logger)
	c.logger.Debug("search resolved", "query", query, "hits", len(resp.Results), "ids", len(ids))
	return ids, nil
}

func (c *Connector) finish(state State, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.err = err
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("search index unavailable", "error", err)
	} else {
		c.logger.Info("search index ready")
	}
	c.settleOnce.Do(func() { close(c.settled) })
	c.emit(state, err)
}

func (c *Connector) emit(state State, err error) {
	c.mu.Lock()
	fns := make([]func(State, error), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(state, err)
	}
}
