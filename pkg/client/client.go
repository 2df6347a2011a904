// Package client is a thin REST client over a running reformer API,
// used by the CLI subcommands that inspect a live instance.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	batchsvc "github.com/reformlab/reformer/api/rest/service/batch"
	"github.com/reformlab/reformer/api/rest/service/stats"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/env"
)

// Reformer exposes the read surface of the REST API.
type Reformer interface {
	Simulations(ctx context.Context, q SimulationQuery) ([]models.Simulation, error)
	Simulation(ctx context.Context, id int64) (*models.Simulation, error)
	Batches(ctx context.Context, status string) ([]models.BatchPass, error)
	Batch(ctx context.Context, id string) (*batchsvc.GetResponse, error)
	Stats(ctx context.Context) (*stats.StatsResponse, error)
}

// New builds a client against the given base URL. An empty base targets
// the local instance on the configured port.
func New(base string) Reformer {
	if strings.TrimSpace(base) == "" {
		base = fmt.Sprintf("http://localhost:%v", env.Variables().Port)
	}
	return &client{
		base:       strings.TrimSuffix(base, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type client struct {
	base       string
	httpClient *http.Client
}

// SimulationQuery filters the simulation listing.
type SimulationQuery struct {
	Status   string
	BiooilID int64
	Limit    int
}

func (c *client) Simulations(ctx context.Context, q SimulationQuery) ([]models.Simulation, error) {
	values := url.Values{}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.BiooilID > 0 {
		values.Set("biooil_id", strconv.FormatInt(q.BiooilID, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	var sims []models.Simulation
	if err := c.get(ctx, "/v1/simulations", values, &sims); err != nil {
		return nil, err
	}
	return sims, nil
}

func (c *client) Simulation(ctx context.Context, id int64) (*models.Simulation, error) {
	var sim models.Simulation
	if err := c.get(ctx, fmt.Sprintf("/v1/simulations/%d", id), nil, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

func (c *client) Batches(ctx context.Context, status string) ([]models.BatchPass, error) {
	values := url.Values{}
	if status != "" {
		values.Set("status", status)
	}

	var batches []models.BatchPass
	if err := c.get(ctx, "/v1/batches", values, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (c *client) Batch(ctx context.Context, id string) (*batchsvc.GetResponse, error) {
	var batch batchsvc.GetResponse
	if err := c.get(ctx, "/v1/batches/"+url.PathEscape(id), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *client) Stats(ctx context.Context) (*stats.StatsResponse, error) {
	var resp stats.StatsResponse
	if err := c.get(ctx, "/v1/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) get(ctx context.Context, path string, values url.Values, v interface{}) error {
	target := c.base + path
	if len(values) > 0 {
		target += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
