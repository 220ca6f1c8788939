// Package results pages search results from a commerce provider and keeps
// superseded fetches from ever being observed as current.
package results

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// DefaultPageSize is used when a cache is created with a non-positive page size
const DefaultPageSize = 20

// ErrStaleResult is returned when a fetch completes after its query was
// replaced. Callers drop it; it is never shown to users.
var ErrStaleResult = errors.New("results: stale result discarded")

// FetchFunc loads one window of results for q
type FetchFunc[T any] func(ctx context.Context, q domain.Query, offset, limit int) ([]T, error)

// Page is one memoized window of results
type Page[T any] struct {
	Index      int
	Items      []T
	Generation uint64
}

// Empty reports whether the page has no items
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

type options struct {
	timeout    time.Duration
	logger     *zap.Logger
	query      domain.Query
	generation uint64
}

// Option configures a Cache
type Option func(*options)

// WithFetchTimeout bounds every provider fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithQuery sets the initial query
func WithQuery(q domain.Query) Option {
	return func(o *options) {
		o.query = q
	}
}

func withGeneration(g uint64) Option {
	return func(o *options) {
		o.generation = g
	}
}

// Cache lazily fetches and memoizes pages for one query at a time. Every
// stored page was fetched under the generation active when it completed.
type Cache[T any] struct {
	fetch    FetchFunc[T]
	pageSize int
	timeout  time.Duration
	logger   *zap.Logger
	flights  singleflight.Group

	mu         sync.Mutex
	query      domain.Query
	generation uint64
	pages      map[int]Page[T]
}

// NewCache creates a cache over fetch
func NewCache[T any](fetch FetchFunc[T], pageSize int, opts ...Option) *Cache[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cache[T]{
		fetch:      fetch,
		pageSize:   pageSize,
		timeout:    o.timeout,
		logger:     o.logger,
		query:      o.query,
		generation: o.generation,
		pages:      make(map[int]Page[T]),
	}
}

// PageSize returns the window size of every fetch
func (c *Cache[T]) PageSize() int {
	return c.pageSize
}

// GetPage returns page n of the current query, fetching it on first access.
// Concurrent misses for the same page share one fetch. A fetch that completes
// after the query changed yields ErrStaleResult. Cancelling ctx abandons the
// wait, not the shared fetch.
func (c *Cache[T]) GetPage(ctx context.Context, n int) (Page[T], error) {
	if n < 0 {
		return Page[T]{}, fmt.Errorf("results: negative page index %d", n)
	}

	c.mu.Lock()
	if p, ok := c.pages[n]; ok {
		c.mu.Unlock()
		return p, nil
	}
	g, q := c.generation, c.query
	c.mu.Unlock()

	key := fmt.Sprintf("%d/%d", g, n)
	ch := c.flights.DoChan(key, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), g, q, n)
	})

	select {
	case <-ctx.Done():
		return Page[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Page[T]{}, res.Err
		}
		return res.Val.(Page[T]), nil
	}
}

func (c *Cache[T]) load(ctx context.Context, g uint64, q domain.Query, n int) (Page[T], error) {
	c.mu.Lock()
	if c.generation == g {
		if p, ok := c.pages[n]; ok {
			c.mu.Unlock()
			return p, nil
		}
	}
	c.mu.Unlock()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := c.fetch(ctx, q, n*c.pageSize, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != g {
		c.logger.Debug("Discarding stale page",
			zap.Stringer("query", q),
			zap.Int("page", n),
			zap.Uint64("generation", g),
			zap.Uint64("current", c.generation))
		return Page[T]{}, ErrStaleResult
	}
	if err != nil {
		c.logger.Warn("Page fetch failed",
			zap.Stringer("query", q),
			zap.Int("page", n),
			zap.Error(err))
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}

	p := Page[T]{Index: n, Items: items, Generation: g}
	c.pages[n] = p
	c.logger.Debug("Page loaded",
		zap.Stringer("query", q),
		zap.Int("page", n),
		zap.Int("items", len(items)),
		zap.Duration("took", time.Since(start)))
	return p, nil
}

// NewQuery replaces the query, drops every memoized page and advances the
// generation. It returns the new generation.
func (c *Cache[T]) NewQuery(q domain.Query) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
	return c.resetLocked()
}

// Invalidate advances the generation and drops memoized pages, keeping the query
func (c *Cache[T]) Invalidate() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetLocked()
}

func (c *Cache[T]) resetLocked() uint64 {
	c.generation++
	clear(c.pages)
	return c.generation
}

// Generation returns the current generation
func (c *Cache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Query returns the current query
func (c *Cache[T]) Query() domain.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Cached returns page n if it is memoized
func (c *Cache[T]) Cached(n int) (Page[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[n]
	return p, ok
}
