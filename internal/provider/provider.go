// Package provider defines the commerce backend capability consumed by the
// field widgets, the error codes a backend reports, and an in-memory backend.
package provider

import (
	"context"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// CommerceProvider supplies item and category lookups
type CommerceProvider interface {
	// GetItem returns the item with the given id, or nil when it does not exist
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	// GetItems runs a multi-id lookup, a category listing or a keyword search.
	// For id lookups the result is positional and missing ids come back as nil.
	GetItems(ctx context.Context, req ItemsRequest) ([]*domain.Item, error)
	GetCategoryTree(ctx context.Context) ([]domain.Category, error)
}

// ItemsRequest selects items by ids, category or keyword. IDs take precedence,
// then Category, then Keyword. Offset and Limit page category and keyword results.
type ItemsRequest struct {
	IDs      []string
	Category string
	Keyword  string
	Offset   int
	Limit    int
}

// ForQuery builds the page request for a search query
func ForQuery(q domain.Query, offset, limit int) ItemsRequest {
	return ItemsRequest{
		Category: q.Category,
		Keyword:  q.Keyword,
		Offset:   offset,
		Limit:    limit,
	}
}

// Compact drops the nil entries of a positional lookup result
func Compact(items []*domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, *it)
		}
	}
	return out
}

// Window applies offset/limit to an already filtered slice. A non-positive
// limit means no limit.
func Window[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}
