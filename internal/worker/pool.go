// Package worker fans batch work out to a fixed set of goroutines. Each
// worker runs its own loop with its own state, so an engine session is
// never shared between goroutines.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size set of workers.
type Pool struct {
	size int
}

// New creates a pool. Sizes below one collapse to a single worker, the
// documented sequential mode.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}

// Each invokes run once per worker with the worker's ordinal and blocks
// until all loops return. The first error cancels the shared context and
// is returned.
func (p *Pool) Each(ctx context.Context, run func(ctx context.Context, worker int) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		worker := i
		group.Go(func() error {
			return run(groupCtx, worker)
		})
	}
	return group.Wait()
}
