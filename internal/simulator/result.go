package simulator

import (
	"math"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/pkg/flowsheet"
)

// StreamState is the sampled state of one stream: component mole fractions
// on a 0..1 basis plus bulk conditions.
type StreamState struct {
	Components     map[string]float64
	TemperatureC   float64
	PressureBar    float64
	MassFlowKgh    float64
	MolarFlowKmolh float64
}

// MoleFractionSum totals the component fractions.
func (s StreamState) MoleFractionSum() float64 {
	var sum float64
	for _, v := range s.Components {
		sum += v
	}
	return sum
}

// Result is one solved case read back through the model's output bindings.
type Result struct {
	Converged          bool
	Iterations         int
	MassErrorPercent   float64
	EnergyErrorPercent float64
	Product            map[string]float64
	Energy             map[string]float64
	Streams            map[string]StreamState
}

// Collect reads a full result bundle off a solved engine. A non-converged
// solve yields a Result carrying only the convergence outputs.
func Collect(e Engine, def *flowsheet.Definition) (*Result, error) {
	status, err := e.Output(def.Outputs.Status)
	if err != nil {
		return nil, errors.Wrap(err, "read solver status")
	}
	iterations, err := e.Output(def.Outputs.Iterations)
	if err != nil {
		return nil, errors.Wrap(err, "read solver iterations")
	}

	res := &Result{
		Converged:  status == SolveOK,
		Iterations: int(math.Round(iterations)),
	}
	if !res.Converged {
		return res, nil
	}

	if res.MassErrorPercent, err = e.Output(def.Outputs.MassError); err != nil {
		return nil, errors.Wrap(err, "read mass closure")
	}
	if res.EnergyErrorPercent, err = e.Output(def.Outputs.EnergyError); err != nil {
		return nil, errors.Wrap(err, "read energy closure")
	}

	res.Product = make(map[string]float64, len(def.Outputs.Product))
	for key, path := range def.Outputs.Product {
		if res.Product[key], err = e.Output(path); err != nil {
			return nil, errors.Wrapf(err, "read product %s", key)
		}
	}

	res.Energy = make(map[string]float64, len(def.Outputs.Energy))
	for key, path := range def.Outputs.Energy {
		if res.Energy[key], err = e.Output(path); err != nil {
			return nil, errors.Wrapf(err, "read energy %s", key)
		}
	}

	res.Streams = make(map[string]StreamState, len(def.Streams))
	for _, stream := range def.Streams {
		state := StreamState{Components: make(map[string]float64, len(def.Components))}
		for _, component := range def.Components {
			v, err := e.Output(stream.Component(component))
			if err != nil {
				return nil, errors.Wrapf(err, "read stream %s %s", stream.Location, component)
			}
			state.Components[component] = v
		}
		if state.TemperatureC, err = e.Output(stream.Metric("temperature_c")); err != nil {
			return nil, errors.Wrapf(err, "read stream %s", stream.Location)
		}
		if state.PressureBar, err = e.Output(stream.Metric("pressure_bar")); err != nil {
			return nil, errors.Wrapf(err, "read stream %s", stream.Location)
		}
		if state.MassFlowKgh, err = e.Output(stream.Metric("massflow_kgh")); err != nil {
			return nil, errors.Wrapf(err, "read stream %s", stream.Location)
		}
		if state.MolarFlowKmolh, err = e.Output(stream.Metric("molarflow_kmolh")); err != nil {
			return nil, errors.Wrapf(err, "read stream %s", stream.Location)
		}
		res.Streams[stream.Location] = state
	}

	return res, nil
}
