package sqlitecatalog

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML catalog format accepted by Seed
type Fixture struct {
	Categories []CategoryFixture `yaml:"categories"`
	Products   []ProductFixture  `yaml:"products"`
}

// CategoryFixture is one category node with its children
type CategoryFixture struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Slug     string            `yaml:"slug"`
	Children []CategoryFixture `yaml:"children,omitempty"`
}

// ProductFixture is one product. The first variant becomes the item's variant key.
type ProductFixture struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Variants   []string          `yaml:"variants,omitempty"`
	Categories []string          `yaml:"categories,omitempty"`
	Images     map[string]string `yaml:"images,omitempty"` // view type -> url
}

// SeedYAML decodes a YAML fixture and loads it
func (c *Catalog) SeedYAML(ctx context.Context, r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode catalog fixture: %w", err)
	}
	if err := c.Seed(ctx, fx); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Seed inserts or replaces the fixture's categories and products in one transaction
func (c *Catalog) Seed(ctx context.Context, fx Fixture) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var pos int
	var insertCategory func(parent string, cats []CategoryFixture) error
	insertCategory = func(parent string, cats []CategoryFixture) error {
		for _, cat := range cats {
			if cat.ID == "" {
				return fmt.Errorf("category under %q has no id", parent)
			}
			pos++
			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO categories (id, parent_id, name, slug, position) VALUES (?, ?, ?, ?, ?)",
				cat.ID, parent, cat.Name, cat.Slug, pos); err != nil {
				return fmt.Errorf("insert category %q: %w", cat.ID, err)
			}
			if err := insertCategory(cat.ID, cat.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insertCategory("", fx.Categories); err != nil {
		return err
	}

	for i, p := range fx.Products {
		if p.ID == "" {
			return fmt.Errorf("product #%d has no id", i)
		}
		variant := ""
		if len(p.Variants) > 0 {
			variant = p.Variants[0]
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO products (id, name, variant, position) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, variant, i); err != nil {
			return fmt.Errorf("insert product %q: %w", p.ID, err)
		}

		viewTypes := make([]string, 0, len(p.Images))
		for vt := range p.Images {
			viewTypes = append(viewTypes, vt)
		}
		sort.Strings(viewTypes)
		for _, vt := range viewTypes {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO product_images (product_id, view_type, url) VALUES (?, ?, ?)",
				p.ID, vt, p.Images[vt]); err != nil {
				return fmt.Errorf("insert image %q for %q: %w", vt, p.ID, err)
			}
		}

		for _, cat := range p.Categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO product_categories (product_id, category_id, position) VALUES (?, ?, ?)",
				p.ID, cat, i); err != nil {
				return fmt.Errorf("assign %q to %q: %w", p.ID, cat, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	c.logger.Info("catalog seeded",
		zap.Int("categories", pos),
		zap.Int("products", len(fx.Products)))
	return nil
}
