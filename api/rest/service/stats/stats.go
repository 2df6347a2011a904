package stats

import (
	"context"
	"time"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/db"
	"gorm.io/gorm"
)

// StatsResponse is the top-level statistics payload.
type StatsResponse struct {
	Simulations SimulationStats     `json:"simulations"`
	Batches     BatchStats          `json:"batches"`
	ByBiooil    []BiooilConvergence `json:"by_biooil"`
	BestYields  []YieldPoint        `json:"best_yields"`
}

// SimulationStats contains aggregate run statistics.
type SimulationStats struct {
	Total           int64   `json:"total"`
	Converged       int64   `json:"converged"`
	Failed          int64   `json:"failed"`
	Warning         int64   `json:"warning"`
	Recent24h       int64   `json:"recent_24h"`
	ConvergenceRate float64 `json:"convergence_rate"`
	AvgH2YieldKg    float64 `json:"avg_h2_yield_kg"`
	AvgMassErrorPct float64 `json:"avg_mass_error_percent"`
}

// BatchStats summarizes pass lifecycles.
type BatchStats struct {
	Total     int64 `json:"total"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// BiooilConvergence breaks convergence down per feedstock.
type BiooilConvergence struct {
	BiooilID     int64   `json:"biooil_id"`
	Runs         int64   `json:"runs"`
	Converged    int64   `json:"converged"`
	AvgH2YieldKg float64 `json:"avg_h2_yield_kg"`
}

// YieldPoint is one high-yield operating point.
type YieldPoint struct {
	SimulationID  int64   `json:"simulation_id"`
	BiooilID      int64   `json:"biooil_id"`
	TemperatureC  float64 `json:"temperature_c"`
	PressureBar   float64 `json:"pressure_bar"`
	SteamToCarbon float64 `json:"steam_to_carbon"`
	H2YieldKg     float64 `json:"h2_yield_kg"`
}

// Service provides statistics queries.
type Service struct {
	ctx context.Context
	db  *gorm.DB
}

// New creates a Service with the default DB connection.
func New(ctx context.Context) *Service {
	return &Service{ctx: ctx, db: db.Connection()}
}

// WithDatabase swaps the connection; used by tests.
func (s *Service) WithDatabase(conn *gorm.DB) *Service {
	s.db = conn
	return s
}

// Get computes aggregate statistics from the result tables.
func (s *Service) Get() (*StatsResponse, error) {
	resp := &StatsResponse{}

	q := func() *gorm.DB { return s.db.WithContext(s.ctx) }

	q().Model(&models.Simulation{}).Count(&resp.Simulations.Total)
	q().Model(&models.Simulation{}).
		Where("ConvergenceStatus = ?", models.StatusConverged).
		Count(&resp.Simulations.Converged)
	q().Model(&models.Simulation{}).
		Where("ConvergenceStatus = ?", models.StatusFailed).
		Count(&resp.Simulations.Failed)
	q().Model(&models.Simulation{}).
		Where("ConvergenceStatus = ?", models.StatusWarning).
		Count(&resp.Simulations.Warning)

	since := time.Now().UTC().Add(-24 * time.Hour)
	q().Model(&models.Simulation{}).
		Where("SimulationDate >= ?", since).
		Count(&resp.Simulations.Recent24h)

	terminal := resp.Simulations.Converged + resp.Simulations.Failed + resp.Simulations.Warning
	if terminal > 0 {
		resp.Simulations.ConvergenceRate = float64(resp.Simulations.Converged) / float64(terminal)
	}

	var yieldAvg struct{ Avg float64 }
	q().Model(&models.HydrogenProduct{}).
		Select("AVG(H2_Yield_kg) as avg").
		Scan(&yieldAvg)
	resp.Simulations.AvgH2YieldKg = yieldAvg.Avg

	var massAvg struct{ Avg float64 }
	q().Model(&models.Simulation{}).
		Select("AVG(MassBalanceError_percent) as avg").
		Where("ConvergenceStatus <> ?", models.StatusFailed).
		Scan(&massAvg)
	resp.Simulations.AvgMassErrorPct = massAvg.Avg

	q().Model(&models.BatchPass{}).Count(&resp.Batches.Total)
	q().Model(&models.BatchPass{}).
		Where("status = ?", models.BatchRunning).
		Count(&resp.Batches.Running)
	q().Model(&models.BatchPass{}).
		Where("status = ?", models.BatchCompleted).
		Count(&resp.Batches.Completed)
	q().Model(&models.BatchPass{}).
		Where("status = ?", models.BatchFailed).
		Count(&resp.Batches.Failed)

	// Per-feedstock breakdown, worst converger first.
	type oilRow struct {
		BiooilID  int64
		Runs      int64
		Converged int64
		AvgYield  float64
	}
	var oilRows []oilRow
	q().Model(&models.Simulation{}).
		Select(`AspenSimulation.Biooil_Id as biooil_id,
			COUNT(*) as runs,
			SUM(CASE WHEN ConvergenceStatus = 'Converged' THEN 1 ELSE 0 END) as converged,
			AVG(HydrogenProduct.H2_Yield_kg) as avg_yield`).
		Joins("LEFT JOIN HydrogenProduct ON HydrogenProduct.Simulation_Id = AspenSimulation.Simulation_Id").
		Group("AspenSimulation.Biooil_Id").
		Order("converged ASC").
		Scan(&oilRows)

	resp.ByBiooil = make([]BiooilConvergence, 0, len(oilRows))
	for _, row := range oilRows {
		resp.ByBiooil = append(resp.ByBiooil, BiooilConvergence{
			BiooilID:     row.BiooilID,
			Runs:         row.Runs,
			Converged:    row.Converged,
			AvgH2YieldKg: row.AvgYield,
		})
	}

	// Top operating points by hydrogen yield (up to 5).
	type yieldRow struct {
		SimulationID  int64
		BiooilID      int64
		TemperatureC  float64
		PressureBar   float64
		SteamToCarbon float64
		H2YieldKg     float64
	}
	var yieldRows []yieldRow
	q().Model(&models.HydrogenProduct{}).
		Select(`HydrogenProduct.Simulation_Id as simulation_id,
			AspenSimulation.Biooil_Id as biooil_id,
			ReformingConditions.ReformerTemperature_C as temperature_c,
			ReformingConditions.ReformerPressure_bar as pressure_bar,
			ReformingConditions.SteamToCarbonRatio as steam_to_carbon,
			HydrogenProduct.H2_Yield_kg as h2_yield_kg`).
		Joins("JOIN AspenSimulation ON AspenSimulation.Simulation_Id = HydrogenProduct.Simulation_Id").
		Joins("JOIN ReformingConditions ON ReformingConditions.Simulation_Id = HydrogenProduct.Simulation_Id").
		Where("AspenSimulation.ConvergenceStatus = ?", models.StatusConverged).
		Order("h2_yield_kg DESC").
		Limit(5).
		Scan(&yieldRows)

	resp.BestYields = make([]YieldPoint, 0, len(yieldRows))
	for _, row := range yieldRows {
		resp.BestYields = append(resp.BestYields, YieldPoint(row))
	}

	return resp, nil
}
