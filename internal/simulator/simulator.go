package simulator

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/pkg/flowsheet"
)

// Engine defines the interface for interacting with one process simulator
// instance. An Engine is analogous to one licensed solver session: it loads
// a flowsheet model, takes scalar inputs at model-bound paths, runs, and
// exposes scalar outputs at model-bound paths. Implementations are not
// required to be safe for concurrent use; the driver owns one engine per
// worker.
type Engine interface {
	// Load initializes the engine with a flowsheet model. It must be
	// called before any other method and may be called again to reset the
	// session.
	Load(ctx context.Context, def *flowsheet.Definition) error
	// SetInput writes one scalar at a model-bound path.
	SetInput(path string, value float64) error
	// Output reads one scalar at a model-bound path. Reading a path the
	// last solve did not produce is an error.
	Output(path string) (float64, error)
	// Run solves the loaded flowsheet with the current inputs. A solver
	// that completes without reaching a solution returns nil and reports
	// the outcome at the model's status path.
	Run(ctx context.Context) error
	// Close releases the engine session.
	Close() error
}

// Solver status codes reported at the model's status output path.
const (
	SolveOK         float64 = 0
	SolveError      float64 = 1
	SolveInfeasible float64 = 2
)

// Factory builds one engine instance.
type Factory func() Engine

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes an engine backend available under the given name.
// Backends register themselves from their package init.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// New builds an engine by backend name.
func New(name string) (Engine, error) {
	mu.RLock()
	factory, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, errors.Errorf("simulator: engine %q not registered", name)
	}
	return factory(), nil
}

// Engines lists the registered backend names, sorted.
func Engines() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
