package sweep

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/driver"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/metrics"
	metricstest "github.com/reformlab/reformer/internal/metrics/testutil"
	"github.com/stretchr/testify/require"
)

func noopRun(context.Context) (*driver.Summary, error) {
	return &driver.Summary{}, nil
}

func TestNewParsesFiveFieldExpression(t *testing.T) {
	s, err := New(Config{Schedule: "*/5 * * * *"}, nil, noopRun)
	require.NoError(t, err)

	next := s.nextTick()
	require.True(t, next.After(time.Now()))
	require.Zero(t, next.Minute()%5)
}

func TestNewRejectsBadExpression(t *testing.T) {
	_, err := New(Config{Schedule: "not a schedule"}, nil, noopRun)
	require.Error(t, err)
}

func TestNewRejectsEmptySchedule(t *testing.T) {
	_, err := New(Config{Schedule: "   "}, nil, noopRun)
	require.Error(t, err)
}

func TestNewRequiresRunFunc(t *testing.T) {
	_, err := New(Config{Schedule: "0 * * * *"}, nil, nil)
	require.Error(t, err)
}

func TestNewRejectsBadTimezone(t *testing.T) {
	_, err := New(Config{Schedule: "0 * * * *", Timezone: "Mars/Olympus"}, nil, noopRun)
	require.Error(t, err)
}

func TestNextTickHonorsTimezone(t *testing.T) {
	s, err := New(Config{Schedule: "0 3 * * *", Timezone: "UTC"}, nil, noopRun)
	require.NoError(t, err)

	next := s.nextTick()
	require.Equal(t, 3, next.Hour())
	require.Equal(t, time.UTC, next.Location())
}

func TestFirePublishesSweepCompleted(t *testing.T) {
	bus := event.New()
	summary := &driver.Summary{
		BatchID:   "pass-sweep",
		Total:     3,
		Completed: 3,
		Converged: 2,
		Warning:   1,
	}

	s, err := New(Config{Schedule: "* * * * *"}, bus, func(context.Context) (*driver.Summary, error) {
		return summary, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := bus.Subscribe(ctx, event.Filter{Types: []event.Type{event.TypeSweepCompleted}})
	require.NoError(t, err)

	before := metricstest.CounterValue(t, metrics.SweepRunsTotal, "ok")
	s.fire(ctx)
	require.Equal(t, before+1, metricstest.CounterValue(t, metrics.SweepRunsTotal, "ok"))

	select {
	case evt := <-events:
		require.Equal(t, event.TypeSweepCompleted, evt.Type)
		require.Equal(t, "pass-sweep", evt.BatchID)

		var got driver.Summary
		require.NoError(t, json.Unmarshal(evt.Payload, &got))
		require.Equal(t, 2, got.Converged)
	case <-time.After(time.Second):
		t.Fatal("no sweep event received")
	}
}

func TestFireCountsFailures(t *testing.T) {
	s, err := New(Config{Schedule: "* * * * *"}, nil, func(context.Context) (*driver.Summary, error) {
		return nil, errors.New("matrix missing")
	})
	require.NoError(t, err)

	before := metricstest.CounterValue(t, metrics.SweepRunsTotal, "error")
	s.fire(context.Background())
	require.Equal(t, before+1, metricstest.CounterValue(t, metrics.SweepRunsTotal, "error"))
}

func TestStartStopsOnCancel(t *testing.T) {
	s, err := New(Config{Schedule: "0 0 1 1 *"}, nil, noopRun)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
