package driver

import (
	"github.com/reformlab/reformer/pkg/env"
)

// FromEnvironment seeds a Config from the process environment. Flags layer
// on top of the returned value.
func FromEnvironment(e *env.Environment) Config {
	return Config{
		BatchSize:    e.BatchSize,
		MaxFailures:  e.MaxFailures,
		Workers:      e.Workers,
		SolveTimeout: e.SolveTimeout,
		Pause:        e.BatchPause,
		CacheDir:     e.CacheDir,
	}
}
