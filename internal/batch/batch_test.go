package batch

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedEmitsInOrder(t *testing.T) {
	t.Parallel()

	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}

	for _, workers := range []int{-1, 0, 1, 2, 8, 500} {
		var got []int
		err := Ordered(context.Background(), items, workers,
			func(_ context.Context, item int) (int, error) {
				time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond) //nolint:gosec // jitter only
				return item * 10, nil
			},
			func(i, out int) error {
				assert.Equal(t, i*10, out)
				got = append(got, i)
				return nil
			})
		require.NoError(t, err, "workers=%d", workers)
		assert.Equal(t, items, got, "workers=%d", workers)
	}
}

func TestOrderedEmpty(t *testing.T) {
	t.Parallel()

	called := false
	err := Ordered(context.Background(), []string(nil), 4,
		func(context.Context, string) (string, error) { called = true; return "", nil },
		func(int, string) error { called = true; return nil })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestOrderedWorkError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	for _, workers := range []int{1, 4} {
		var emitted atomic.Int32
		err := Ordered(context.Background(), items, workers,
			func(_ context.Context, item int) (int, error) {
				if item == 10 {
					return 0, errBoom
				}
				return item, nil
			},
			func(i, _ int) error {
				assert.Less(t, i, 10)
				emitted.Add(1)
				return nil
			})
		require.ErrorIs(t, err, errBoom, "workers=%d", workers)
		assert.LessOrEqual(t, emitted.Load(), int32(10))
	}
}

func TestOrderedAllWorkersFail(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")
	items := []int{0, 1, 2, 3}

	// When every worker fails, the result channel closes while the
	// consumer is still waiting; the worker error must be what surfaces.
	for range 500 {
		err := Ordered(context.Background(), items, len(items),
			func(context.Context, int) (int, error) { return 0, errRead },
			func(int, int) error { return nil })
		require.ErrorIs(t, err, errRead)
	}
}

func TestOrderedEmitError(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	err := Ordered(context.Background(), items, 3,
		func(_ context.Context, item int) (int, error) { return item, nil },
		func(i, _ int) error {
			if i == 2 {
				return errStop
			}
			return nil
		})
	assert.ErrorIs(t, err, errStop)
}

func TestOrderedCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Ordered(ctx, []int{1, 2, 3}, 1,
		func(_ context.Context, item int) (int, error) { return item, nil },
		func(int, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderedBoundsInFlight(t *testing.T) {
	t.Parallel()

	const workers = 3
	items := make([]int, 40)
	for i := range items {
		items[i] = i
	}

	var started, emitted atomic.Int32
	release := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	err := Ordered(context.Background(), items, workers,
		func(_ context.Context, item int) (int, error) {
			started.Add(1)
			if item == 0 {
				<-release
			}
			return item, nil
		},
		func(int, int) error {
			emitted.Add(1)
			// Item 0 gates emission; nothing may run more than the
			// window ahead of the emitted count.
			assert.LessOrEqual(t, started.Load()-emitted.Load(), int32(2*workers))
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, int32(len(items)), emitted.Load())
}
