package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryWorker(t *testing.T) {
	pool := New(4)
	require.Equal(t, 4, pool.Size())

	var mu sync.Mutex
	seen := map[int]bool{}

	err := pool.Each(context.Background(), func(_ context.Context, worker int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[worker] = true
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 4)
}

func TestPoolMinimumSize(t *testing.T) {
	require.Equal(t, 1, New(0).Size())
	require.Equal(t, 1, New(-3).Size())
}

func TestPoolPropagatesError(t *testing.T) {
	pool := New(2)
	boom := errors.New("boom")

	err := pool.Each(context.Background(), func(ctx context.Context, worker int) error {
		if worker == 0 {
			return boom
		}
		<-ctx.Done()
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestPoolErrorCancelsSiblings(t *testing.T) {
	pool := New(2)

	cancelled := make(chan struct{})
	err := pool.Each(context.Background(), func(ctx context.Context, worker int) error {
		if worker == 0 {
			return errors.New("first failure")
		}
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	require.Error(t, err)

	select {
	case <-cancelled:
	default:
		t.Fatal("sibling worker was not cancelled")
	}
}
