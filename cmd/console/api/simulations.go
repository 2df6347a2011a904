package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Simulation mirrors the run payload returned by the API. Child rows
// are present only on the detail endpoint.
type Simulation struct {
	ID                        int64      `json:"simulation_id"`
	BiooilID                  int64      `json:"biooil_id"`
	SimulationDate            time.Time  `json:"simulation_date"`
	Engine                    string     `json:"aspen_version"`
	Status                    string     `json:"convergence_status"`
	Iterations                int        `json:"convergence_iterations"`
	MassBalanceErrorPercent   float64    `json:"mass_balance_error_percent"`
	EnergyBalanceErrorPercent float64    `json:"energy_balance_error_percent"`
	Warnings                  string     `json:"warnings,omitempty"`
	Notes                     string     `json:"notes,omitempty"`
	ValidationFlag            int        `json:"validation_flag"`
	Conditions                *Condition `json:"conditions,omitempty"`
	Product                   *Product   `json:"product,omitempty"`
	Energy                    *Energy    `json:"energy,omitempty"`
	Syngas                    []Syngas   `json:"syngas,omitempty"`
}

// Condition is the operating point of a run.
type Condition struct {
	TemperatureC  float64 `json:"reformer_temperature_c"`
	PressureBar   float64 `json:"reformer_pressure_bar"`
	SteamToCarbon float64 `json:"steam_to_carbon_ratio"`
	FeedRateKgh   float64 `json:"biooil_feed_rate_kgh"`
	SteamRateKgh  float64 `json:"steam_feed_rate_kgh"`
}

// Product carries hydrogen product metrics.
type Product struct {
	H2YieldKg               float64 `json:"h2_yield_kg"`
	H2PurityPercent         float64 `json:"h2_purity_percent"`
	H2FlowRateKgh           float64 `json:"h2_flow_rate_kgh"`
	COSlipPpm               float64 `json:"co_slip_ppm"`
	CarbonConversionPercent float64 `json:"carbon_conversion_percent"`
	EnergyEfficiencyPercent float64 `json:"energy_efficiency_percent"`
}

// Energy carries the energy balance of a run.
type Energy struct {
	TotalEnergyInputMJ       float64 `json:"total_energy_input_mj"`
	ReformerHeatMJ           float64 `json:"reformer_heat_mj"`
	ThermalEfficiencyPercent float64 `json:"thermal_efficiency_percent"`
}

// Syngas is one stream composition snapshot.
type Syngas struct {
	StreamLocation string  `json:"stream_location"`
	H2MolPercent   float64 `json:"h2_molpercent"`
	COMolPercent   float64 `json:"co_molpercent"`
	CO2MolPercent  float64 `json:"co2_molpercent"`
	CH4MolPercent  float64 `json:"ch4_molpercent"`
}

// SimulationsService exposes run history operations.
type SimulationsService struct {
	client *Client
}

// List fetches runs matching the given query parameters.
func (s *SimulationsService) List(ctx context.Context, params url.Values) ([]Simulation, error) {
	endpoint := s.client.resolve("/v1/simulations", params.Encode())

	var payload []Simulation
	if err := s.client.do(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}

	return payload, nil
}

// Get retrieves a single run with its condition, product, energy, and
// syngas child rows.
func (s *SimulationsService) Get(ctx context.Context, id int64) (*Simulation, error) {
	endpoint := s.client.resolve(fmt.Sprintf("/v1/simulations/%d", id))

	var payload Simulation
	if err := s.client.do(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("get simulation: %w", err)
	}

	return &payload, nil
}
