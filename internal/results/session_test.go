package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

func echo(_ context.Context, q domain.Query, _, _ int) ([]string, error) {
	return []string{q.String()}, nil
}

func TestSessionReusesCacheForSameKind(t *testing.T) {
	s := NewSession(echo, 10)
	assert.Nil(t, s.Current())

	first := s.Search(domain.KeywordQuery("boots"))
	second := s.Search(domain.KeywordQuery("shoes"))

	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), second.Generation())
	assert.Equal(t, domain.KeywordQuery("shoes"), second.Query())
}

func TestSessionReplacesCacheWhenKindChanges(t *testing.T) {
	s := NewSession(echo, 10)
	keyword := s.Search(domain.KeywordQuery("boots"))
	_, err := keyword.GetPage(context.Background(), 0)
	require.NoError(t, err)

	category := s.Search(domain.CategoryQuery("mens"))
	require.NotSame(t, keyword, category)
	assert.Same(t, category, s.Current())

	_, ok := keyword.Cached(0)
	assert.False(t, ok, "replaced cache keeps no pages")
	assert.Greater(t, category.Generation(), uint64(0))
	assert.Equal(t, keyword.Generation(), category.Generation())

	p, err := category.GetPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.CategoryQuery("mens").String()}, p.Items)
}

func TestSessionClose(t *testing.T) {
	s := NewSession(echo, 10)
	c := s.Search(domain.KeywordQuery("x"))
	s.Close()
	assert.Nil(t, s.Current())
	assert.Equal(t, uint64(1), c.Generation())
}
