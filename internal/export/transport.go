// Package export streams terminal run records to external sinks as they
// land in the database, so downstream training pipelines can consume
// results without polling.
package export

import (
	"context"
)

// Transport delivers one flattened run record to a sink.
type Transport interface {
	Emit(ctx context.Context, record Record) error

	Close() error
}
