package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, 4, DefaultOptions().MaxWorkers)
}

func TestAllPreservesTaskOrder(t *testing.T) {
	slow := func(ctx context.Context) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "slow", nil
	}
	fast := func(ctx context.Context) (string, error) { return "fast", nil }

	out, err := All(context.Background(), slow, fast)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", "fast"}, out)
}

func TestAllFirstFailureWins(t *testing.T) {
	boom := errors.New("boom")
	var sawCancel atomic.Bool

	out, err := All(context.Background(),
		func(ctx context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				sawCancel.Store(true)
				return 0, ctx.Err()
			case <-time.After(time.Second):
				return 1, nil
			}
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.True(t, sawCancel.Load())
}

func TestAllEmpty(t *testing.T) {
	out, err := All[int](context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestForEach(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, ForEach(ctx, []int{}, DefaultOptions(), func(ctx context.Context, i int, item int) error { return nil }))

	var sum atomic.Int64
	errs := ForEach(ctx, []int{1, 2, 3, 4, 5}, ParallelOptions{MaxWorkers: 2}, func(ctx context.Context, i int, item int) error {
		sum.Add(int64(item))
		if item%2 == 0 {
			return errors.New("even")
		}
		return nil
	})
	assert.Len(t, errs, 2)
	assert.Equal(t, int64(15), sum.Load())
}

func TestForEachCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int32
	errs := ForEach(ctx, []int{1, 2, 3}, ParallelOptions{MaxWorkers: -1}, func(ctx context.Context, i int, item int) error {
		called.Add(1)
		return nil
	})
	assert.Len(t, errs, 3)
	assert.Zero(t, called.Load())
}
