package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Type represents the type of event.
type Type string

const (
	TypeBatchStarted   Type = "batch_started"
	TypeBatchCompleted Type = "batch_completed"
	TypeBatchFailed    Type = "batch_failed"
	TypeRunStarted     Type = "run_started"
	TypeRunConverged   Type = "run_converged"
	TypeRunFailed      Type = "run_failed"
	TypeRunWarning     Type = "run_warning"
	TypeRunSkipped     Type = "run_skipped"
	TypeModelApplied   Type = "model_applied"
	TypeSweepCompleted Type = "sweep_completed"
)

// Event represents a system event.
type Event struct {
	Type         Type            `json:"type"`
	BatchID      string          `json:"batch_id,omitempty"`
	SimulationID int64           `json:"simulation_id,omitempty"`
	BiooilID     int64           `json:"biooil_id,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Filter defines criteria for receiving events.
type Filter struct {
	BatchID      string
	SimulationID int64
	Types        []Type
}

// Bus defines the event bus interface.
type Bus interface {
	Publish(e Event)
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

type bus struct {
	subscribers map[chan Event]Filter
	mu          sync.RWMutex
}

// New creates a new event bus.
func New() Bus {
	return &bus{
		subscribers: make(map[chan Event]Filter),
	}
}

func (b *bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, filter := range b.subscribers {
		if b.matches(filter, e) {
			select {
			case ch <- e:
			default:
				// Drop event if channel is full to prevent blocking
			}
		}
	}
}

func (b *bus) Subscribe(ctx context.Context, filter Filter) (<-chan Event, error) {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers[ch] = filter
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (b *bus) matches(filter Filter, e Event) bool {
	if filter.BatchID != "" && filter.BatchID != e.BatchID {
		return false
	}
	if filter.SimulationID != 0 && filter.SimulationID != e.SimulationID {
		return false
	}
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
