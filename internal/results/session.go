package results

import (
	"sync"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// Session owns the cache of one search box. Searches of the same kind reuse
// the cache under a new generation; switching between keyword and category
// search replaces it outright.
type Session[T any] struct {
	fetch    FetchFunc[T]
	pageSize int
	opts     []Option

	mu    sync.Mutex
	cache *Cache[T]
}

// NewSession creates a session with no active search
func NewSession[T any](fetch FetchFunc[T], pageSize int, opts ...Option) *Session[T] {
	return &Session[T]{fetch: fetch, pageSize: pageSize, opts: opts}
}

// Search makes q the active query and returns the cache serving it
func (s *Session[T]) Search(q domain.Query) *Cache[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil && s.cache.Query().Kind() == q.Kind() {
		s.cache.NewQuery(q)
		return s.cache
	}

	var next uint64
	if s.cache != nil {
		next = s.cache.Invalidate()
	}
	opts := append(append([]Option{}, s.opts...), WithQuery(q), withGeneration(next))
	s.cache = NewCache(s.fetch, s.pageSize, opts...)
	return s.cache
}

// Current returns the active cache, nil before the first search
func (s *Session[T]) Current() *Cache[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

// Close invalidates the active cache so outstanding fetches resolve stale
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		s.cache.Invalidate()
		s.cache = nil
	}
}
