// Package results persists solved cases into the reporting schema. Each
// run is an append-once audit record: a parent row opens Pending, then a
// single transaction closes it at a terminal status together with all of
// its child rows.
package results

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/matrix"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/simulator"
	"github.com/reformlab/reformer/internal/validator"
	"github.com/reformlab/reformer/pkg/jsonutil"
	"github.com/reformlab/reformer/pkg/log"
	"gorm.io/gorm"
)

const (
	// Error text stored on a failed run is capped at this many bytes.
	maxErrorChars = 500

	writeAttempts = 3
	retryBackoff  = 250 * time.Millisecond
)

// Writer persists runs. A terminal write is one transaction, so a crash
// can never leave a run with half its child rows.
type Writer struct {
	db *gorm.DB
}

// NewWriter creates a new writer. The provided db connection must be non-nil.
func NewWriter(dbConn *gorm.DB) *Writer {
	if dbConn == nil {
		panic("results writer requires a database connection")
	}
	return &Writer{db: dbConn}
}

// Begin opens the audit trail for one case: a parent row in Pending.
func (w *Writer) Begin(ctx context.Context, biooilID int64, version string) (*models.Simulation, error) {
	sim := &models.Simulation{
		BiooilID:          biooilID,
		SimulationDate:    time.Now().UTC(),
		AspenVersion:      version,
		ConvergenceStatus: models.StatusPending,
	}
	err := w.retry(ctx, func() error {
		return w.db.WithContext(ctx).Create(sim).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pending run")
	}
	return sim, nil
}

// CompleteRequest carries everything needed to close out one run.
type CompleteRequest struct {
	Simulation *models.Simulation
	Row        matrix.Row
	Result     *simulator.Result
	Status     models.ConvergenceStatus
	Findings   []string

	// Notes carries the solver error text for failed runs.
	Notes string
}

// Complete closes a run at its terminal status. Failed runs keep their
// conditions row for the record but get no output rows. Closing a run
// twice is an error: the parent transitions out of Pending exactly once.
func (w *Writer) Complete(ctx context.Context, req *CompleteRequest) error {
	if req == nil || req.Simulation == nil {
		return errors.New("results: nil completion request")
	}
	if !req.Status.Terminal() {
		return errors.Errorf("results: %s is not a terminal status", req.Status)
	}

	warnings, err := jsonutil.MarshalSliceString(req.Findings)
	if err != nil {
		return errors.Wrap(err, "encode findings")
	}

	var iterations int
	var massErr, energyErr float64
	if req.Result != nil {
		iterations = req.Result.Iterations
		massErr = req.Result.MassErrorPercent
		energyErr = req.Result.EnergyErrorPercent
	}

	updates := map[string]interface{}{
		"ConvergenceStatus":          req.Status,
		"ConvergenceIterations":      iterations,
		"MassBalanceError_percent":   massErr,
		"EnergyBalanceError_percent": energyErr,
		"Warnings":                   warnings,
		"Notes":                      truncate(req.Notes, maxErrorChars),
		"ValidationFlag":             validator.Flag(req.Status),
	}

	err = w.retry(ctx, func() error {
		return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			parent := tx.Model(req.Simulation).
				Where(map[string]interface{}{"ConvergenceStatus": models.StatusPending}).
				Updates(updates)
			if parent.Error != nil {
				return parent.Error
			}
			if parent.RowsAffected == 0 {
				return errors.Errorf("run %d is already terminal", req.Simulation.ID)
			}

			if err := tx.Create(conditionRow(req.Simulation.ID, req.Row)).Error; err != nil {
				return err
			}
			if req.Status == models.StatusFailed {
				return nil
			}

			if err := tx.Create(productRow(req.Simulation.ID, req.Result)).Error; err != nil {
				return err
			}
			for _, row := range syngasRows(req.Simulation.ID, req.Result) {
				if err := tx.Create(row).Error; err != nil {
					return err
				}
			}
			return tx.Create(energyRow(req.Simulation.ID, req.Result)).Error
		})
	})
	if err != nil {
		return errors.Wrapf(err, "complete run %d", req.Simulation.ID)
	}

	req.Simulation.ConvergenceStatus = req.Status
	return nil
}

// retry runs op up to writeAttempts times with a linear backoff, so a
// briefly unreachable database does not fail the row.
func (w *Writer) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == writeAttempts {
			break
		}
		log.Warn("retrying result write", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func conditionRow(simID int64, row matrix.Row) *models.ReformingCondition {
	return &models.ReformingCondition{
		SimulationID:         simID,
		ReformerTemperatureC: row.TemperatureC,
		ReformerPressureBar:  row.PressureBar,
		SteamToCarbonRatio:   row.SteamToCarbon,
		BiooilFeedRateKgh:    row.FeedRateKgh,
		SteamFeedRateKgh:     row.SteamRateKgh,
		ResidenceTimeMin:     matrix.ResidenceTimeMin,
		CatalystWeightKg:     matrix.CatalystWeightKg,
		GHSVh1:               matrix.GHSVh1,
		HTSTemperatureC:      matrix.HTSTemperatureC,
		LTSTemperatureC:      matrix.LTSTemperatureC,
		PSAPressureBar:       matrix.PSAPressureBar,
	}
}

func productRow(simID int64, res *simulator.Result) *models.HydrogenProduct {
	p := res.Product
	return &models.HydrogenProduct{
		SimulationID:            simID,
		H2YieldKg:               p["h2_yield_kg"],
		H2PurityPercent:         p["h2_purity_percent"],
		H2FlowRateKgh:           p["h2_flowrate_kgh"],
		H2FlowRateNm3h:          p["h2_flowrate_nm3h"],
		H2CORatio:               p["h2_co_ratio"],
		H2CO2Ratio:              p["h2_co2_ratio"],
		CO2ProductionKg:         p["co2_production_kg"],
		CO2PurityPercent:        p["co2_purity_percent"],
		CH4SlipPercent:          p["ch4_slip_percent"],
		COSlipPpm:               p["co_slip_ppm"],
		CarbonConversionPercent: p["carbon_conversion_percent"],
		H2RecoveryPSAPercent:    p["h2_recovery_percent"],
		EnergyEfficiencyPercent: p["energy_efficiency_percent"],
		SpecificEnergyMJperKgH2: p["specific_energy_mj_per_kg"],
		TailGasFlowRateKgh:      p["tailgas_flowrate_kgh"],
		TailGasHHVMJperKg:       p["tailgas_hhv_mj_per_kg"],
	}
}

func syngasRows(simID int64, res *simulator.Result) []*models.SyngasComposition {
	rows := make([]*models.SyngasComposition, 0, len(models.StreamLocations))
	for _, location := range models.StreamLocations {
		state := res.Streams[string(location)]
		rows = append(rows, &models.SyngasComposition{
			SimulationID:       simID,
			StreamLocation:     location,
			H2MolPercent:       state.Components["H2"] * 100,
			COMolPercent:       state.Components["CO"] * 100,
			CO2MolPercent:      state.Components["CO2"] * 100,
			CH4MolPercent:      state.Components["CH4"] * 100,
			H2OMolPercent:      state.Components["H2O"] * 100,
			N2MolPercent:       state.Components["N2"] * 100,
			TemperatureC:       state.TemperatureC,
			PressureBar:        state.PressureBar,
			MassFlowRateKgh:    state.MassFlowKgh,
			MolarFlowRateKmolh: state.MolarFlowKmolh,
		})
	}
	return rows
}

func energyRow(simID int64, res *simulator.Result) *models.EnergyBalance {
	e := res.Energy
	return &models.EnergyBalance{
		SimulationID:             simID,
		BiooilEnergyHHVMJ:        e["biooil_hhv_mj"],
		PreheaterHeatMJ:          e["preheater_heat_mj"],
		ReformerHeatMJ:           e["reformer_heat_mj"],
		TotalEnergyInputMJ:       e["total_input_mj"],
		H2ProductHHVMJ:           e["h2_product_hhv_mj"],
		TailGasEnergyMJ:          e["tailgas_energy_mj"],
		HeatRecoveredMJ:          e["heat_recovered_mj"],
		HeatLossMJ:               e["heat_loss_mj"],
		ThermalEfficiencyPercent: e["thermal_efficiency_percent"],
		CarbonEfficiencyPercent:  e["carbon_efficiency_percent"],
	}
}

// Terminal returns the case keys of every run already at a terminal
// status, so a resumed pass can skip them without relying on the
// checkpoint alone.
func (w *Writer) Terminal(ctx context.Context) (map[string]struct{}, error) {
	type pair struct {
		BiooilID      int64
		TemperatureC  float64
		PressureBar   float64
		SteamToCarbon float64
	}

	var pairs []pair
	err := w.db.WithContext(ctx).
		Model(&models.Simulation{}).
		Select(`"AspenSimulation"."Biooil_Id" as biooil_id,
			"ReformingConditions"."ReformerTemperature_C" as temperature_c,
			"ReformingConditions"."ReformerPressure_bar" as pressure_bar,
			"ReformingConditions"."SteamToCarbonRatio" as steam_to_carbon`).
		Joins(`JOIN "ReformingConditions" ON "ReformingConditions"."Simulation_Id" = "AspenSimulation"."Simulation_Id"`).
		Where(`"AspenSimulation"."ConvergenceStatus" IN ?`,
			[]models.ConvergenceStatus{models.StatusConverged, models.StatusFailed}).
		Find(&pairs).Error
	if err != nil {
		return nil, errors.Wrap(err, "load terminal runs")
	}

	keys := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		keys[matrix.CaseKey(p.BiooilID, p.TemperatureC, p.PressureBar, p.SteamToCarbon)] = struct{}{}
	}
	return keys, nil
}
