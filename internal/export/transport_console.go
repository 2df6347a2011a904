package export

import (
	"context"
	"encoding/json"

	"github.com/reformlab/reformer/pkg/log"
)

type consoleTransport struct{}

// NewConsoleTransport logs each record through the structured logger.
func NewConsoleTransport() Transport {
	return &consoleTransport{}
}

func (t *consoleTransport) Emit(_ context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	log.Info("export record",
		"simulation_id", record.SimulationID,
		"batch_id", record.BatchID,
		"status", string(record.Status),
		"payload", string(data),
	)
	return nil
}

func (t *consoleTransport) Close() error { return nil }
