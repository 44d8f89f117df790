package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSearchWithoutCredentials(t *testing.T) {
	c, err := New(context.Background(), "", "")
	require.NoError(t, err)

	results, usedMock, err := c.Search(context.Background(), "laptop fan noise")
	require.NoError(t, err)
	assert.True(t, usedMock)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Link)
		assert.NotEmpty(t, r.Snippet)
	}
}

func TestMockSearchDeterministic(t *testing.T) {
	c, _ := New(context.Background(), "", "")
	a, _, _ := c.Search(context.Background(), "cracked screen")
	b, _, _ := c.Search(context.Background(), "cracked screen")
	assert.Equal(t, a, b)

	other, _, _ := c.Search(context.Background(), "different query")
	assert.NotEqual(t, a, other)
}
