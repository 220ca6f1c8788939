package provider

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// MemoryProvider is an in-memory implementation of CommerceProvider
type MemoryProvider struct {
	mu         sync.RWMutex
	items      map[string]domain.Item
	order      []string            // insertion order of item ids
	membership map[string][]string // category id -> item ids
	tree       []domain.Category
}

// NewMemoryProvider creates a new memory-based provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		items:      make(map[string]domain.Item),
		membership: make(map[string][]string),
	}
}

// AddItem adds or replaces an item and optionally assigns it to categories
func (p *MemoryProvider) AddItem(item domain.Item, categoryIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.items[item.ID]; !exists {
		p.order = append(p.order, item.ID)
	}
	p.items[item.ID] = item
	for _, cat := range categoryIDs {
		if !slices.Contains(p.membership[cat], item.ID) {
			p.membership[cat] = append(p.membership[cat], item.ID)
		}
	}
}

// RemoveItem deletes an item from the catalog and every category
func (p *MemoryProvider) RemoveItem(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.items[id]; !exists {
		return
	}
	delete(p.items, id)
	p.order = slices.DeleteFunc(p.order, func(v string) bool { return v == id })
	for cat, ids := range p.membership {
		p.membership[cat] = slices.DeleteFunc(ids, func(v string) bool { return v == id })
	}
}

// SetCategoryTree replaces the category tree
func (p *MemoryProvider) SetCategoryTree(tree []domain.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tree = tree
}

func (p *MemoryProvider) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	item, ok := p.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (p *MemoryProvider) GetItems(ctx context.Context, req ItemsRequest) ([]*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(req.IDs) > 0 {
		out := make([]*domain.Item, len(req.IDs))
		for i, id := range req.IDs {
			if item, ok := p.items[id]; ok {
				out[i] = &item
			}
		}
		return out, nil
	}

	var ids []string
	switch {
	case req.Category != "":
		ids = p.membership[req.Category]
	case req.Keyword != "":
		needle := strings.ToLower(req.Keyword)
		for _, id := range p.order {
			item := p.items[id]
			if strings.Contains(strings.ToLower(item.DisplayName), needle) ||
				strings.Contains(strings.ToLower(item.ID), needle) {
				ids = append(ids, id)
			}
		}
	default:
		ids = p.order
	}

	page := Window(ids, req.Offset, req.Limit)
	out := make([]*domain.Item, len(page))
	for i, id := range page {
		item := p.items[id]
		out[i] = &item
	}
	return out, nil
}

func (p *MemoryProvider) GetCategoryTree(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	// Return a copy to prevent external modification
	out := make([]domain.Category, len(p.tree))
	copy(out, p.tree)
	return out, nil
}
