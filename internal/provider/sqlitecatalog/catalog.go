// Package sqlitecatalog implements provider.CommerceProvider over a local
// SQLite catalog, used by the terminal host and in tests.
package sqlitecatalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

// DefaultImageViewType is the image view type used for item thumbnails
const DefaultImageViewType = "gridTileDesktop"

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id        TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT '',
	name      TEXT NOT NULL,
	slug      TEXT NOT NULL,
	position  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	variant  TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS product_images (
	product_id TEXT NOT NULL,
	view_type  TEXT NOT NULL,
	url        TEXT NOT NULL,
	PRIMARY KEY (product_id, view_type)
);
CREATE TABLE IF NOT EXISTS product_categories (
	product_id  TEXT NOT NULL,
	category_id TEXT NOT NULL,
	position    INTEGER NOT NULL,
	PRIMARY KEY (product_id, category_id)
);`

// Catalog is a SQLite-backed CommerceProvider
type Catalog struct {
	db            *sql.DB
	imageViewType string
	logger        *zap.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithImageViewType selects which product image is used as the item thumbnail
func WithImageViewType(viewType string) Option {
	return func(c *Catalog) {
		if viewType != "" {
			c.imageViewType = viewType
		}
	}
}

// WithLogger sets the catalog logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open opens (or creates) a catalog database.
// Use ":memory:" for an in-memory database.
func Open(path string, opts ...Option) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	c := &Catalog{
		db:            db,
		imageViewType: DefaultImageViewType,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("sqlitecatalog")
	return c, nil
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	return c.db.Close()
}

const itemColumns = `p.id, p.name, p.variant, COALESCE(
	(SELECT url FROM product_images WHERE product_id = p.id AND view_type = ?),
	(SELECT url FROM product_images WHERE product_id = p.id ORDER BY view_type LIMIT 1),
	'')`

func (c *Catalog) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM products p WHERE p.id = ?",
		c.imageViewType, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, c.fail("get item", err)
	}
	return item, nil
}

func (c *Catalog) GetItems(ctx context.Context, req provider.ItemsRequest) ([]*domain.Item, error) {
	if len(req.IDs) > 0 {
		return c.lookup(ctx, req.IDs)
	}

	query := "SELECT " + itemColumns + " FROM products p"
	args := []any{c.imageViewType}
	switch {
	case req.Category != "":
		query += " JOIN product_categories pc ON pc.product_id = p.id WHERE pc.category_id = ? ORDER BY pc.position, p.position"
		args = append(args, req.Category)
	case req.Keyword != "":
		pattern := "%" + escapeLike(req.Keyword) + "%"
		query += ` WHERE p.name LIKE ? ESCAPE '\' OR p.id LIKE ? ESCAPE '\' ORDER BY p.position`
		args = append(args, pattern, pattern)
	default:
		query += " ORDER BY p.position"
	}

	limit := req.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.fail("search items", err)
	}
	defer rows.Close()

	out := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, c.fail("scan item", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail("search items", err)
	}
	return out, nil
}

func (c *Catalog) lookup(ctx context.Context, ids []string) ([]*domain.Item, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, c.imageViewType)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM products p WHERE p.id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, c.fail("lookup items", err)
	}
	defer rows.Close()

	found := make(map[string]*domain.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, c.fail("scan item", err)
		}
		found[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail("lookup items", err)
	}

	out := make([]*domain.Item, len(ids))
	for i, id := range ids {
		out[i] = found[id]
	}
	return out, nil
}

func (c *Catalog) GetCategoryTree(ctx context.Context) ([]domain.Category, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, parent_id, name, slug FROM categories ORDER BY position")
	if err != nil {
		return nil, c.fail("load categories", err)
	}
	defer rows.Close()

	type node struct {
		cat    domain.Category
		parent string
	}
	var nodes []node
	for rows.Next() {
		var n node
		if err := rows.Scan(&n.cat.ID, &n.parent, &n.cat.Name, &n.cat.Slug); err != nil {
			return nil, c.fail("scan category", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail("load categories", err)
	}

	children := make(map[string][]string)
	byID := make(map[string]domain.Category, len(nodes))
	var roots []string
	for _, n := range nodes {
		byID[n.cat.ID] = n.cat
		if n.parent == "" {
			roots = append(roots, n.cat.ID)
		} else {
			children[n.parent] = append(children[n.parent], n.cat.ID)
		}
	}

	var build func(id string) domain.Category
	build = func(id string) domain.Category {
		cat := byID[id]
		for _, child := range children[id] {
			cat.Children = append(cat.Children, build(child))
		}
		return cat
	}

	tree := make([]domain.Category, 0, len(roots))
	for _, id := range roots {
		tree = append(tree, build(id))
	}
	return tree, nil
}

// fail tags storage errors as backend API errors; context errors pass through
func (c *Catalog) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.logger.Warn("catalog query failed", zap.String("op", op), zap.Error(err))
	return provider.Wrap(provider.CodeAPIError, fmt.Errorf("%s: %w", op, err))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*domain.Item, error) {
	var item domain.Item
	if err := s.Scan(&item.ID, &item.DisplayName, &item.VariantKey, &item.ImageURL); err != nil {
		return nil, err
	}
	return &item, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
