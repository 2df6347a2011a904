package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	ch, err := b.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeRunConverged, BatchID: "b-1", SimulationID: 46})

	e := receive(t, ch)
	assert.Equal(t, TypeRunConverged, e.Type)
	assert.Equal(t, int64(46), e.SimulationID)
}

func TestFilterByType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	ch, err := b.Subscribe(ctx, Filter{Types: []Type{TypeRunFailed}})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeRunConverged})
	b.Publish(Event{Type: TypeRunFailed, SimulationID: 9})

	e := receive(t, ch)
	assert.Equal(t, TypeRunFailed, e.Type)
	assert.Equal(t, int64(9), e.SimulationID)
	assert.Empty(t, ch)
}

func TestFilterByBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	ch, err := b.Subscribe(ctx, Filter{BatchID: "b-2"})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeRunStarted, BatchID: "b-1"})
	b.Publish(Event{Type: TypeRunStarted, BatchID: "b-2"})

	e := receive(t, ch)
	assert.Equal(t, "b-2", e.BatchID)
	assert.Empty(t, ch)
}

func TestSubscribeEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	b := New()
	ch, err := b.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Publishing after unsubscribe must not panic or block.
	b.Publish(Event{Type: TypeBatchCompleted})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	ch, err := b.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 150; i++ {
			b.Publish(Event{Type: TypeRunConverged, SimulationID: int64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	assert.Len(t, ch, 100)
}
