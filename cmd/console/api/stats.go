package api

import (
	"context"
	"fmt"
	"net/http"
)

// StatsResponse mirrors the /v1/stats API response.
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

// StatsService exposes stats-related API helpers.
type StatsService struct {
	client *Client
}

// Get fetches aggregated statistics.
func (s *StatsService) Get(ctx context.Context) (*StatsResponse, error) {
	endpoint := s.client.resolve("/v1/stats")
	var payload StatsResponse
	if err := s.client.do(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return &payload, nil
}
