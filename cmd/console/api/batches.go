package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Batch mirrors the batch-pass payload returned by the API.
type Batch struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Fingerprint string     `json:"fingerprint"`
	Model       string     `json:"model"`
	Engine      string     `json:"engine"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Completed   int        `json:"completed"`
	Converged   int        `json:"converged"`
	Failed      int        `json:"failed"`
	Warning     int        `json:"warning"`
	Skipped     int        `json:"skipped"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// BatchCase is the live view of one matrix row inside a running pass.
type BatchCase struct {
	Index         int        `json:"index"`
	CaseID        int64      `json:"case_id"`
	SimulationID  int64      `json:"simulation_id,omitempty"`
	BiooilID      int64      `json:"biooil_id"`
	TemperatureC  float64    `json:"temperature_c"`
	PressureBar   float64    `json:"pressure_bar"`
	SteamToCarbon float64    `json:"steam_to_carbon"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// BatchLive carries the in-process case-by-case progress of a pass.
type BatchLive struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Cases  []BatchCase `json:"cases"`
}

// BatchDetail joins the durable pass with optional live progress.
type BatchDetail struct {
	Batch
	Live *BatchLive `json:"live"`
}

// BatchesService exposes batch-pass operations.
type BatchesService struct {
	client *Client
}

// List fetches batch passes, newest first.
func (s *BatchesService) List(ctx context.Context, params url.Values) ([]Batch, error) {
	endpoint := s.client.resolve("/v1/batches", params.Encode())

	var payload []Batch
	if err := s.client.do(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	return payload, nil
}

// Get retrieves a single pass with per-case live state when available.
func (s *BatchesService) Get(ctx context.Context, id string) (*BatchDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("batch id is required")
	}

	endpoint := s.client.resolve(fmt.Sprintf("/v1/batches/%s", id))

	var payload BatchDetail
	if err := s.client.do(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	return &payload, nil
}
