package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap runs fn over items with at most limit goroutines. Failures are
// isolated per item: one item erroring never cancels its siblings, and the
// returned slice contains only the successful results, in input order.
func ParallelMap[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []R {
	if limit <= 0 {
		limit = 4
	}
	results := make([]*R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, it := range items {
		g.Go(func() error {
			r, err := fn(gctx, it)
			if err == nil {
				results[i] = &r
			}
			// Settle-all semantics: swallow the error so the group never
			// cancels remaining items.
			return nil
		})
	}
	_ = g.Wait()

	out := make([]R, 0, len(items))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
