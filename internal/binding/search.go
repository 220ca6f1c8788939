package binding

import (
	"context"
	"errors"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/results"
)

// ErrNoSearch is returned by Page before the first Search
var ErrNoSearch = errors.New("binding: no active search")

func (b *Binding) fetchPage(ctx context.Context, q domain.Query, offset, limit int) ([]domain.Item, error) {
	items, err := b.provider.GetItems(ctx, provider.ForQuery(q, offset, limit))
	if err != nil {
		return nil, err
	}
	return provider.Compact(items), nil
}

// Search makes q the current query and returns its generation. Pages of
// earlier queries resolve as results.ErrStaleResult from then on.
func (b *Binding) Search(q domain.Query) uint64 {
	c := b.session.Search(q)
	g := c.Generation()
	b.bus.Publish(domain.SearchStartedEvent{Query: q, Generation: g})
	return g
}

// Page returns page n of the current query. A page whose query was replaced
// while it loaded fails with results.ErrStaleResult, which callers drop.
// Provider failures come back as *errclass.Classified.
func (b *Binding) Page(ctx context.Context, n int) (results.Page[domain.Item], error) {
	c := b.session.Current()
	if c == nil {
		return results.Page[domain.Item]{}, ErrNoSearch
	}

	p, err := c.GetPage(ctx, n)
	switch {
	case errors.Is(err, results.ErrStaleResult):
		return p, err
	case err != nil:
		return p, b.fail(ctx, "page", err)
	}

	if b.session.Current() != c || c.Generation() != p.Generation {
		return results.Page[domain.Item]{}, results.ErrStaleResult
	}
	b.bus.Publish(domain.PageLoadedEvent{Query: c.Query(), Index: p.Index, Count: len(p.Items)})
	return p, nil
}

// Query returns the current search query, the zero Query before any search
func (b *Binding) Query() domain.Query {
	if c := b.session.Current(); c != nil {
		return c.Query()
	}
	return domain.Query{}
}

// Generation returns the generation of the current search, 0 before any search
func (b *Binding) Generation() uint64 {
	if c := b.session.Current(); c != nil {
		return c.Generation()
	}
	return 0
}

// PageSize returns the number of items per page
func (b *Binding) PageSize() int {
	return b.pageSize
}

// Categories returns the provider's category tree flattened for display.
// The tree is loaded once per binding; failures are not remembered.
func (b *Binding) Categories(ctx context.Context) ([]domain.FlatCategory, error) {
	b.catMu.Lock()
	defer b.catMu.Unlock()

	if b.catLoaded {
		return b.categories, nil
	}
	tree, err := b.provider.GetCategoryTree(ctx)
	if err != nil {
		return nil, b.fail(ctx, "categories", err)
	}
	b.categories = provider.Flatten(tree)
	b.catLoaded = true
	return b.categories, nil
}

// Close abandons the current search
func (b *Binding) Close() {
	b.session.Close()
}
