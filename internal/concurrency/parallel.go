package concurrency

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelOptions configures ForEach.
type ParallelOptions struct {
	// MaxWorkers bounds the number of items processed at once.
	MaxWorkers int
}

// DefaultOptions returns the default worker bound.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 4}
}

// All runs every task concurrently and returns the results in task order.
// All tasks must succeed: the first failure cancels the context handed to the
// others and is returned alone, with no partial results.
func All[R any](ctx context.Context, tasks ...func(ctx context.Context) (R, error)) ([]R, error) {
	if len(tasks) == 0 {
		return []R{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	out := make([]R, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			r, err := task(gctx)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEach calls itemFunc for every item with at most opts.MaxWorkers in
// flight. Unlike All it does not stop on failure: every error is collected.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	if len(items) == 0 {
		return nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(maxWorkers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			if err := itemFunc(ctx, i, item); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
