package export

import (
	"context"

	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/metrics"
	"github.com/reformlab/reformer/pkg/log"
	"gorm.io/gorm"
)

// Subscriber listens for terminal run events and emits one record each.
type Subscriber struct {
	bus           event.Bus
	transport     Transport
	transportName string
	builder       *Builder
}

// NewSubscriber wires the bus, transport and record builder together.
func NewSubscriber(bus event.Bus, transport Transport, transportName string, db *gorm.DB) *Subscriber {
	return &Subscriber{
		bus:           bus,
		transport:     transport,
		transportName: transportName,
		builder:       NewBuilder(db),
	}
}

// Start blocks consuming terminal run events until ctx is cancelled, then
// closes the transport.
func (s *Subscriber) Start(ctx context.Context) error {
	filter := event.Filter{
		Types: []event.Type{
			event.TypeRunConverged,
			event.TypeRunFailed,
			event.TypeRunWarning,
		},
	}

	ch, err := s.bus.Subscribe(ctx, filter)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return s.transport.Close()
		case evt, ok := <-ch:
			if !ok {
				return s.transport.Close()
			}
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *Subscriber) handleEvent(ctx context.Context, evt event.Event) {
	if evt.SimulationID == 0 {
		return
	}

	record, err := s.builder.Build(ctx, evt.SimulationID, evt.BatchID)
	if err != nil {
		log.Error("export: build record",
			"simulation_id", evt.SimulationID,
			"batch_id", evt.BatchID,
			"error", err,
		)
		return
	}

	if err := s.transport.Emit(ctx, *record); err != nil {
		log.Error("export: emit record",
			"simulation_id", record.SimulationID,
			"batch_id", record.BatchID,
			"error", err,
		)
		return
	}

	metrics.ExportRecordsTotal.WithLabelValues(s.transportName).Inc()
}
