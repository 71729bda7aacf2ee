// Package batch runs per-entry work in parallel while delivering results
// in submission order.
//
// The archive builder uses it to compress several files at once while the
// single blob writer still appends them in scan order, so offsets are the
// same as in a sequential build.
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkFunc processes one item. It may run concurrently with other calls.
type WorkFunc[In, Out any] func(ctx context.Context, item In) (Out, error)

// EmitFunc receives results strictly in item order, one at a time, on a
// single goroutine.
type EmitFunc[Out any] func(i int, out Out) error

// result carries a finished item back to the ordering stage.
type result[Out any] struct {
	index int
	out   Out
}

// Ordered applies work to every item and passes the results to emit in
// item order. With workers <= 1 it runs serially on the calling goroutine.
//
// At most 2*workers results are held at once: a slow item blocks new
// submissions instead of letting finished results pile up behind it.
// Processing stops on the first error.
//
//nolint:gocognit // producer/worker/consumer coordination
func Ordered[In, Out any](ctx context.Context, items []In, workers int, work WorkFunc[In, Out], emit EmitFunc[Out]) error {
	if workers <= 1 || len(items) < 2 {
		return serial(ctx, items, work, emit)
	}
	if workers > len(items) {
		workers = len(items)
	}
	window := workers * 2

	eg, ctx := errgroup.WithContext(ctx)
	tasks := make(chan int)
	results := make(chan result[Out], workers)
	slots := make(chan struct{}, window)

	eg.Go(func() error {
		defer close(tasks)
		for i := range items {
			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case tasks <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var workerWg sync.WaitGroup
	workerWg.Add(workers)
	for range workers {
		eg.Go(func() error {
			defer workerWg.Done()
			for i := range tasks {
				out, err := work(ctx, items[i])
				if err != nil {
					return err
				}
				select {
				case results <- result[Out]{index: i, out: out}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		workerWg.Wait()
		close(results)
	}()

	eg.Go(func() error {
		next := 0
		pending := make(map[int]Out, window)
		for next < len(items) {
			select {
			case res, ok := <-results:
				if !ok {
					// Workers only stop early after a failure, which
					// eg.Wait reports.
					return nil
				}
				pending[res.index] = res.out
				for {
					out, ok := pending[next]
					if !ok {
						break
					}
					delete(pending, next)
					if err := emit(next, out); err != nil {
						return err
					}
					next++
					<-slots
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return eg.Wait()
}

func serial[In, Out any](ctx context.Context, items []In, work WorkFunc[In, Out], emit EmitFunc[Out]) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := work(ctx, item)
		if err != nil {
			return err
		}
		if err := emit(i, out); err != nil {
			return err
		}
	}
	return nil
}
