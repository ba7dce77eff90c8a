package renderer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// WorkerPool runs tile tasks with bounded concurrency
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 uses the CPU count
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls task once per tile, with at most GetNumWorkers calls in flight.
// No new tile starts once ctx is cancelled or a task has failed; Run returns the first error.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, task func(ctx context.Context, tile *Tile) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(wp.numWorkers))

	for _, tile := range tiles {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Let running tiles finish so their error, if any, wins over the cancellation
			if waitErr := eg.Wait(); waitErr != nil {
				return waitErr
			}
			return fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			if err := task(ctx, tile); err != nil {
				return fmt.Errorf("while rendering tile %d: %w", tile.ID, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	return nil
}
