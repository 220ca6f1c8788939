package sqlitecatalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

const fixtureYAML = `
categories:
  - id: footwear
    name: Footwear
    slug: footwear
    children:
      - id: boots
        name: Boots
        slug: boots
  - id: sale
    name: Sale
    slug: sale
products:
  - id: boot-1
    name: Hiking Boots
    variants: [boot-1-42, boot-1-43]
    categories: [footwear, boots]
    images:
      large: https://img.example/boot-1-large.jpg
      gridTileDesktop: https://img.example/boot-1-tile.jpg
  - id: boot-2
    name: Rain Boots 100%
    categories: [boots, sale]
    images:
      large: https://img.example/boot-2-large.jpg
  - id: shoe-1
    name: Running Shoes
    categories: [footwear]
`

func openSeeded(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	fx, err := c.SeedYAML(context.Background(), strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, fx.Products, 3)
	return c
}

func TestGetItemPicksConfiguredImageViewType(t *testing.T) {
	c := openSeeded(t)
	ctx := context.Background()

	item, err := c.GetItem(ctx, "boot-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Hiking Boots", item.DisplayName)
	assert.Equal(t, "boot-1-42", item.VariantKey)
	assert.Equal(t, "https://img.example/boot-1-tile.jpg", item.ImageURL)

	// falls back to any image when the view type is missing
	item, err = c.GetItem(ctx, "boot-2")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/boot-2-large.jpg", item.ImageURL)
	assert.Equal(t, "boot-2", item.Key())

	missing, err := c.GetItem(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestImageViewTypeOption(t *testing.T) {
	c := openSeeded(t, WithImageViewType("large"))

	item, err := c.GetItem(context.Background(), "boot-1")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/boot-1-large.jpg", item.ImageURL)
}

func TestKeywordSearchPaginatesAndEscapes(t *testing.T) {
	c := openSeeded(t)
	ctx := context.Background()

	page, err := c.GetItems(ctx, provider.ItemsRequest{Keyword: "boots", Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "boot-2", page[0].ID)

	literal, err := c.GetItems(ctx, provider.ItemsRequest{Keyword: "100%", Limit: 10})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "boot-2", literal[0].ID)

	empty, err := c.GetItems(ctx, provider.ItemsRequest{Keyword: "sandals", Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCategoryListingAndIDLookup(t *testing.T) {
	c := openSeeded(t)
	ctx := context.Background()

	inBoots, err := c.GetItems(ctx, provider.ItemsRequest{Category: "boots", Limit: 10})
	require.NoError(t, err)
	require.Len(t, inBoots, 2)
	assert.Equal(t, "boot-1", inBoots[0].ID)
	assert.Equal(t, "boot-2", inBoots[1].ID)

	byID, err := c.GetItems(ctx, provider.ItemsRequest{IDs: []string{"shoe-1", "gone", "boot-1"}})
	require.NoError(t, err)
	require.Len(t, byID, 3)
	assert.Equal(t, "shoe-1", byID[0].ID)
	assert.Nil(t, byID[1])
	assert.Equal(t, "boot-1", byID[2].ID)
}

func TestCategoryTree(t *testing.T) {
	c := openSeeded(t)

	tree, err := c.GetCategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "footwear", tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "boots", tree[0].Children[0].Slug)

	flat := provider.Flatten(tree)
	require.Len(t, flat, 3)
	assert.Equal(t, "(boots) Boots", flat[1].Label)
}

func TestClosedCatalogReportsAPIError(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.GetItems(context.Background(), provider.ItemsRequest{Keyword: "x"})
	require.Error(t, err)
	code, ok := provider.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, provider.CodeAPIError, code)
}

func TestSeedRejectsUnknownFields(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.SeedYAML(context.Background(), strings.NewReader("products:\n  - id: a\n    price: 3\n"))
	require.Error(t, err)
}
