package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map runs fn for every item concurrently and returns the results in input
// order, regardless of completion order.
//
// Map is all-or-nothing: the first error cancels the context passed to the
// remaining calls, Map waits for every goroutine to return, and then reports
// that first error with no results.
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make([]R, len(items))

	for i, item := range items {
		g.Go(func() error {
			result, err := fn(ctx, i, item)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// RunAll executes multiple functions concurrently and collects every error,
// letting the others finish when one fails.
func RunAll(ctx context.Context, funcs []func(ctx context.Context) error) []error {
	if len(funcs) == 0 {
		return nil
	}

	var g errgroup.Group
	errs := make([]error, len(funcs))

	for i, fn := range funcs {
		g.Go(func() error {
			errs[i] = fn(ctx)
			return nil
		})
	}

	_ = g.Wait()

	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	return nonNil
}
