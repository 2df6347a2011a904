package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestBatchesList(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/batches" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("status") != "running" {
			t.Errorf("missing status query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"pass-1","model":"steam-reforming-pilot","status":"running","total":45,"completed":12,"converged":10,"failed":1,"warning":1,"started_at":"2026-08-01T10:00:00Z"}]`))
	}))

	params := url.Values{}
	params.Set("status", "running")
	batches, err := c.Batches().List(context.Background(), params)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}

	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if batches[0].ID != "pass-1" || batches[0].Converged != 10 {
		t.Fatalf("unexpected batch payload: %+v", batches[0])
	}
	if batches[0].StartedAt.IsZero() {
		t.Fatal("started_at not decoded")
	}
}

func TestBatchesGetWithLive(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/batches/pass-1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"pass-1","status":"running","total":45,"live":{"status":"running","cases":[{"index":0,"biooil_id":2,"temperature_c":800,"status":"running"}]}}`))
	}))

	detail, err := c.Batches().Get(context.Background(), "pass-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}

	if detail.Live == nil || len(detail.Live.Cases) != 1 {
		t.Fatalf("live cases not decoded: %+v", detail.Live)
	}
	if detail.Live.Cases[0].TemperatureC != 800 {
		t.Fatalf("unexpected case payload: %+v", detail.Live.Cases[0])
	}
}

func TestBatchesGetRequiresID(t *testing.T) {
	c := &Client{httpClient: &http.Client{Timeout: time.Second}}
	if _, err := c.Batches().Get(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}
