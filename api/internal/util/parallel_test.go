package util

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelMapIsolatesFailures(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	out := ParallelMap(context.Background(), items, 2, func(_ context.Context, n int) (string, error) {
		if n == 3 {
			return "", errors.New("boom")
		}
		return strconv.Itoa(n), nil
	})
	// One failure drops one item; siblings are unaffected and order holds.
	assert.Equal(t, []string{"1", "2", "4", "5"}, out)
}

func TestParallelMapEmpty(t *testing.T) {
	out := ParallelMap(context.Background(), nil, 4, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Empty(t, out)
}

func TestParallelMapAllFail(t *testing.T) {
	out := ParallelMap(context.Background(), []int{1, 2}, 4, func(_ context.Context, n int) (int, error) {
		return 0, errors.New("boom")
	})
	assert.Empty(t, out)
}
