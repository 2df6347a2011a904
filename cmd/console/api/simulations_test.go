package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
)

func TestSimulationsList(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/simulations" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"simulation_id":7,"biooil_id":2,"convergence_status":"Converged","mass_balance_error_percent":0.03}]`))
	}))

	sims, err := c.Simulations().List(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("list simulations: %v", err)
	}

	if len(sims) != 1 || sims[0].ID != 7 || sims[0].Status != "Converged" {
		t.Fatalf("unexpected payload: %+v", sims)
	}
}

func TestSimulationsGetDecodesChildren(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/simulations/7" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"simulation_id":7,
			"biooil_id":2,
			"convergence_status":"Converged",
			"conditions":{"reformer_temperature_c":800,"reformer_pressure_bar":15,"steam_to_carbon_ratio":3.5},
			"product":{"h2_yield_kg":10.2,"h2_purity_percent":99.5},
			"syngas":[{"stream_location":"Reformer_Out","h2_molpercent":48.1}]
		}`))
	}))

	sim, err := c.Simulations().Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get simulation: %v", err)
	}

	if sim.Conditions == nil || sim.Conditions.TemperatureC != 800 {
		t.Fatalf("conditions not decoded: %+v", sim.Conditions)
	}
	if sim.Product == nil || sim.Product.H2YieldKg != 10.2 {
		t.Fatalf("product not decoded: %+v", sim.Product)
	}
	if len(sim.Syngas) != 1 || sim.Syngas[0].StreamLocation != "Reformer_Out" {
		t.Fatalf("syngas not decoded: %+v", sim.Syngas)
	}
}

func TestStatsGet(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/stats" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"simulations":{"total":45,"converged":40,"convergence_rate":0.89,"avg_h2_yield_kg":9.7},"batches":{"total":3,"completed":2}}`))
	}))

	stats, err := c.Stats().Get(context.Background())
	if err != nil {
		t.Fatalf("fetch stats: %v", err)
	}

	if stats.Simulations.Total != 45 || stats.Batches.Completed != 2 {
		t.Fatalf("unexpected stats payload: %+v", stats)
	}
}
