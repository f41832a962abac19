// Package batch runs one operation per item over a bounded number of
// goroutines, keeping every item's outcome separate.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of the operation for one item. A failed item keeps
// its error here instead of failing the whole batch.
type Result[R any] struct {
	Value R
	Err   error
}

func (r Result[R]) OK() bool { return r.Err == nil }

// ValueOr returns the value of a successful result, fallback otherwise.
func (r Result[R]) ValueOr(fallback R) R {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}

// Map calls op for every item with at most maxInFlight calls running at the
// same time, admitting the next item as soon as one finishes. Results are in
// input order whatever the completion order. Map does not cancel running
// calls; op is expected to honor ctx itself.
func Map[T, R any](ctx context.Context, items []T, op func(context.Context, T) (R, error), maxInFlight int) []Result[R] {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	results := make([]Result[R], len(items))

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for i, item := range items {
		g.Go(func() error {
			value, err := op(ctx, item)
			results[i] = Result[R]{Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
