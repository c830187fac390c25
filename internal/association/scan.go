package association

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// scanColumns runs fn for every name on at most workers goroutines.
// Results come back in the order of names. When several columns fail, the error of the
// earliest one in that order is returned, so the outcome matches a sequential scan.
func scanColumns[T any](ctx context.Context, workers int, names []string, fn func(ctx context.Context, name string) (T, error)) ([]T, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]T, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = fn(gctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
