package models

// All enumerates every table migrated by pkg/db, reference data first so
// foreign keys resolve during migration.
var All = []interface{}{
	&Biooil{},
	&Simulation{},
	&ReformingCondition{},
	&HydrogenProduct{},
	&SyngasComposition{},
	&EnergyBalance{},
	&BatchPass{},
	&ModelDefinition{},
}

// ConvergenceStatus enumerates the lifecycle states of a simulation run.
// Runs are created Pending and move to exactly one terminal state.
type ConvergenceStatus string

const (
	// StatusPending marks a run created at loop start, before the solver
	// returned.
	StatusPending ConvergenceStatus = "Pending"
	// StatusConverged marks a run whose solve reached a stable solution.
	StatusConverged ConvergenceStatus = "Converged"
	// StatusFailed marks a run whose solve errored or timed out.
	StatusFailed ConvergenceStatus = "Failed"
	// StatusWarning marks a converged run that failed validation and is
	// retained for manual review.
	StatusWarning ConvergenceStatus = "Warning"
)

// Terminal reports whether the status is an end state.
func (s ConvergenceStatus) Terminal() bool {
	switch s {
	case StatusConverged, StatusFailed, StatusWarning:
		return true
	default:
		return false
	}
}

// StreamLocation identifies one of the four fixed sampling points along the
// reforming train.
type StreamLocation string

const (
	StreamReformerOut StreamLocation = "Reformer_Out"
	StreamHTSOut      StreamLocation = "HTS_Out"
	StreamLTSOut      StreamLocation = "LTS_Out"
	StreamPSAIn       StreamLocation = "PSA_In"
)

// StreamLocations lists the sampling points in process order.
var StreamLocations = []StreamLocation{
	StreamReformerOut,
	StreamHTSOut,
	StreamLTSOut,
	StreamPSAIn,
}

// SyngasComponents lists the gas species tracked at every stream location.
var SyngasComponents = []string{"H2", "CO", "CO2", "CH4", "H2O", "N2"}
