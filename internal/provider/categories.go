package provider

import (
	"fmt"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// Flatten walks the category tree depth first, parents before children
func Flatten(tree []domain.Category) []domain.FlatCategory {
	var out []domain.FlatCategory
	var walk func(nodes []domain.Category)
	walk = func(nodes []domain.Category) {
		for _, c := range nodes {
			out = append(out, domain.FlatCategory{
				ID:    c.ID,
				Name:  c.Name,
				Slug:  c.Slug,
				Label: fmt.Sprintf("(%s) %s", c.Slug, c.Name),
			})
			walk(c.Children)
		}
	}
	walk(tree)
	return out
}
