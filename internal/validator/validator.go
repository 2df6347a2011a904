// Package validator grades solved cases against the plant acceptance
// thresholds. It is a pure function of the result bundle: no IO, no
// state, so the same result always grades the same way.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/simulator"
	"github.com/reformlab/reformer/pkg/flowsheet"
)

// Acceptance thresholds for a converged case.
const (
	MassTolerancePercent   = 0.1
	EnergyTolerancePercent = 1.0
	MinH2YieldKg           = 5.0
	MaxH2YieldKg           = 15.0
	MinH2PurityPercent     = 98.0
	MaxCOSlipPPM           = 10000.0

	fractionSumTolerance = 0.01
)

// Check returns one finding per threshold violation, in a stable order. A
// non-converged result has nothing to grade and returns nil. Findings
// never discard a run: the writer stores them on the run record and
// downgrades its status to Warning.
func Check(res *simulator.Result) []string {
	if res == nil || !res.Converged {
		return nil
	}

	var findings []string
	add := func(format string, args ...interface{}) {
		findings = append(findings, fmt.Sprintf(format, args...))
	}

	if res.MassErrorPercent > MassTolerancePercent {
		add("mass balance error %.3f%% exceeds %.1f%%", res.MassErrorPercent, MassTolerancePercent)
	}
	if res.EnergyErrorPercent > EnergyTolerancePercent {
		add("energy balance error %.3f%% exceeds %.1f%%", res.EnergyErrorPercent, EnergyTolerancePercent)
	}

	if yield, ok := res.Product["h2_yield_kg"]; ok && (yield < MinH2YieldKg || yield > MaxH2YieldKg) {
		add("h2 yield %.2f kg/100 kg outside %.0f..%.0f", yield, MinH2YieldKg, MaxH2YieldKg)
	}
	if purity, ok := res.Product["h2_purity_percent"]; ok && purity < MinH2PurityPercent {
		add("h2 purity %.2f%% below %.1f%%", purity, MinH2PurityPercent)
	}
	if slip, ok := res.Product["co_slip_ppm"]; ok && slip > MaxCOSlipPPM {
		add("co slip %.0f ppm exceeds %.0f ppm", slip, MaxCOSlipPPM)
	}

	findings = append(findings, percentRange("product", res.Product)...)
	findings = append(findings, percentRange("energy", res.Energy)...)

	for _, location := range flowsheet.Locations {
		state, ok := res.Streams[location]
		if !ok {
			add("stream %s missing from result", location)
			continue
		}

		var sum float64
		for _, component := range flowsheet.Components {
			fraction := state.Components[component]
			sum += fraction
			if fraction < 0 || fraction > 1 {
				add("stream %s %s fraction %.4f outside 0..1", location, component, fraction)
			}
		}
		if sum < 1-fractionSumTolerance || sum > 1+fractionSumTolerance {
			add("stream %s mole fractions sum to %.4f", location, sum)
		}
		if state.PressureBar <= 0 {
			add("stream %s pressure %.2f bar is non-physical", location, state.PressureBar)
		}
	}

	return findings
}

// percentRange flags any percentage-valued binding outside 0..100.
func percentRange(group string, values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasSuffix(key, "_percent") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var findings []string
	for _, key := range keys {
		if v := values[key]; v < 0 || v > 100 {
			findings = append(findings,
				fmt.Sprintf("%s %s %.2f outside 0..100", group, key, v))
		}
	}
	return findings
}

// Status maps a result and its findings onto the run lifecycle.
func Status(res *simulator.Result, findings []string) models.ConvergenceStatus {
	switch {
	case res == nil || !res.Converged:
		return models.StatusFailed
	case len(findings) > 0:
		return models.StatusWarning
	default:
		return models.StatusConverged
	}
}

// Flag reports whether a run is clean enough for the training-data view.
func Flag(status models.ConvergenceStatus) int {
	if status == models.StatusConverged {
		return 1
	}
	return 0
}
