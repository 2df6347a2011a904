// Package equilib is the built-in solver backend: a deterministic
// equilibrium approximation of the steam reforming train. It honors the
// same path-addressed boundary as an external simulator, so the driver
// cannot tell them apart.
package equilib

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/simulator"
	"github.com/reformlab/reformer/pkg/flowsheet"
)

func init() {
	simulator.Register(flowsheet.EngineEquilib, func() simulator.Engine {
		return New()
	})
}

// Engine is one solver session. Inputs and outputs live in flat maps keyed
// by the loaded model's paths.
type Engine struct {
	mu      sync.Mutex
	def     *flowsheet.Definition
	inputs  map[string]float64
	outputs map[string]float64
}

// New returns an unloaded session.
func New() *Engine {
	return &Engine{
		inputs:  map[string]float64{},
		outputs: map[string]float64{},
	}
}

// Load resets the session onto the given model.
func (e *Engine) Load(ctx context.Context, def *flowsheet.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if def == nil {
		return errors.New("equilib: nil model definition")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.def = def
	e.inputs = map[string]float64{}
	e.outputs = map[string]float64{}
	return nil
}

func (e *Engine) SetInput(path string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.def == nil {
		return errors.New("equilib: no model loaded")
	}
	e.inputs[path] = value
	return nil
}

// Output resolves solved values first, then echoes inputs, so condition
// paths read back what was set.
func (e *Engine) Output(path string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.outputs[path]; ok {
		return v, nil
	}
	if v, ok := e.inputs[path]; ok {
		return v, nil
	}
	return 0, errors.Errorf("equilib: no value at path %q", path)
}

// Run solves the train with the current inputs. Setup mistakes return an
// error; a case without a feasible equilibrium completes with an
// infeasible status at the model's status path.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.def == nil {
		return errors.New("equilib: no model loaded")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := e.gather()
	if err != nil {
		return err
	}

	e.outputs = map[string]float64{}
	sol, err := solve(in)
	if err != nil {
		if errors.Is(err, errInfeasible) {
			e.outputs[e.def.Outputs.Status] = simulator.SolveInfeasible
			e.outputs[e.def.Outputs.Iterations] = divergedIterations
			return nil
		}
		e.outputs[e.def.Outputs.Status] = simulator.SolveError
		return err
	}

	e.publish(sol)
	return nil
}

// Close drops the session state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.def = nil
	e.inputs = map[string]float64{}
	e.outputs = map[string]float64{}
	return nil
}

func (e *Engine) input(path string) (float64, error) {
	v, ok := e.inputs[path]
	if !ok {
		return 0, errors.Errorf("equilib: input %q not set", path)
	}
	return v, nil
}

func (e *Engine) gather() (*caseInput, error) {
	var err error
	in := &caseInput{fractions: make(map[string]float64, len(flowsheet.Fractions))}

	for _, name := range flowsheet.Fractions {
		if in.fractions[name], err = e.input(e.def.Inputs.Fractions[name]); err != nil {
			return nil, err
		}
	}
	if in.feedKgh, err = e.input(e.def.Inputs.FeedRate); err != nil {
		return nil, err
	}
	if in.steamKgh, err = e.input(e.def.Inputs.SteamRate); err != nil {
		return nil, err
	}
	if in.temperatureC, err = e.input(e.def.Inputs.Temperature); err != nil {
		return nil, err
	}
	if in.pressureBar, err = e.input(e.def.Inputs.Pressure); err != nil {
		return nil, err
	}
	if in.htsTempC, err = e.input(e.def.Inputs.Setpoints["hts_temperature_c"]); err != nil {
		return nil, err
	}
	if in.ltsTempC, err = e.input(e.def.Inputs.Setpoints["lts_temperature_c"]); err != nil {
		return nil, err
	}
	if in.psaPressureBar, err = e.input(e.def.Inputs.Setpoints["psa_pressure_bar"]); err != nil {
		return nil, err
	}

	return in, nil
}

func (e *Engine) publish(sol *solution) {
	out := e.def.Outputs
	e.outputs[out.Status] = simulator.SolveOK
	e.outputs[out.Iterations] = float64(sol.iterations)
	e.outputs[out.MassError] = sol.massErrorPercent
	e.outputs[out.EnergyError] = sol.energyErrorPercent

	for key, path := range out.Product {
		e.outputs[path] = sol.product[key]
	}
	for key, path := range out.Energy {
		e.outputs[path] = sol.energy[key]
	}

	for _, stream := range e.def.Streams {
		state, ok := sol.streams[stream.Location]
		if !ok {
			continue
		}
		total := state.total()
		for _, component := range e.def.Components {
			fraction := 0.0
			if total > 0 {
				fraction = state.moles[component] / total
			}
			e.outputs[stream.Component(component)] = fraction
		}
		e.outputs[stream.Metric("temperature_c")] = state.temperatureC
		e.outputs[stream.Metric("pressure_bar")] = state.pressureBar
		e.outputs[stream.Metric("massflow_kgh")] = state.massFlowKgh
		e.outputs[stream.Metric("molarflow_kmolh")] = total
	}
}
