package errclass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

var anchors = []string{"#cors", "#authentication-error", "#api-error", "#not-supported", "#other"}

func TestClassifyAppliesExactlyOneTemplate(t *testing.T) {
	c := New("https://app.example")

	tests := []struct {
		code     provider.Code
		category Category
		anchor   string
		lead     string
	}{
		{provider.CodeCors, Cors, "#cors", "Cross-Origin Request Blocked"},
		{provider.CodeNotAuthenticated, NotAuthenticated, "#authentication-error", "Not authenticated"},
		{provider.CodeAuthError, AuthError, "#authentication-error", "Authentication error"},
		{provider.CodeAuthUnreachable, AuthUnreachable, "#authentication-error", "Authentication server unreachable"},
		{provider.CodeAPIError, APIError, "#api-error", "API Error"},
		{provider.CodeAPIGraphQL, APIGraphQL, "#api-error", "API GraphQL Error"},
		{provider.CodeNotSupported, NotSupported, "#not-supported", "Method not supported"},
		{provider.Code("RateLimited"), Unknown, "#other", "Encountered error 'RateLimited'"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("get page: %w", provider.NewError(tt.code, "vendor said no"))
			got := c.Classify(err)

			require.NotNil(t, got)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.code, got.Code)
			assert.True(t, strings.HasPrefix(got.Message, tt.lead), got.Message)
			assert.True(t, strings.HasSuffix(got.Message, "vendor said no"), got.Message)
			for _, a := range anchors {
				if a == tt.anchor {
					assert.Equal(t, 1, strings.Count(got.Message, a))
				} else {
					assert.NotContains(t, got.Message, a)
				}
			}
			require.ErrorIs(t, got, err)
		})
	}
}

func TestCategoriesHaveDistinctMessages(t *testing.T) {
	c := New("")
	seen := map[string]Category{}
	codes := []provider.Code{
		provider.CodeCors, provider.CodeNotAuthenticated, provider.CodeAuthError,
		provider.CodeAuthUnreachable, provider.CodeAPIError, provider.CodeAPIGraphQL,
		provider.CodeNotSupported, "Other",
	}
	for _, code := range codes {
		got := c.Classify(provider.NewError(code, "x"))
		prev, dup := seen[got.Message]
		require.False(t, dup, "%s and %s render the same message", prev, got.Category)
		seen[got.Message] = got.Category
	}
	assert.Len(t, seen, len(Categories()))
}

func TestCorsMessageNamesOrigin(t *testing.T) {
	got := New("https://app.example").Classify(provider.NewError(provider.CodeCors, "blocked"))
	assert.Contains(t, got.Message, "accept requests from https://app.example.")

	fallback := Classifier{}.Classify(provider.NewError(provider.CodeCors, "blocked"))
	assert.Contains(t, fallback.Message, DefaultDocsURL+"#cors")
}

func TestClassifyUncodedError(t *testing.T) {
	got := New("").Classify(context.DeadlineExceeded)
	assert.Equal(t, Unknown, got.Category)
	assert.Empty(t, got.Code)
	assert.Equal(t, "context deadline exceeded", got.Message)
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := New("")
	first := c.Classify(provider.NewError(provider.CodeAPIError, "boom"))
	second := c.Classify(fmt.Errorf("again: %w", first))
	assert.Same(t, first, second)
	assert.Nil(t, c.Classify(nil))
}

func TestCategoryOfIsTotal(t *testing.T) {
	for _, cat := range Categories() {
		assert.NotEmpty(t, cat.String())
	}
	assert.Equal(t, Unknown, CategoryOf(""))
	assert.Equal(t, "ApiGraphQL", CategoryOf(provider.CodeAPIGraphQL).String())
	assert.True(t, errors.Is(New("").Classify(provider.Wrap(provider.CodeAPIError, context.Canceled)), context.Canceled))
}
