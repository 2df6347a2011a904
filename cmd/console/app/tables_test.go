package app

import (
	"testing"
	"time"

	"github.com/reformlab/reformer/cmd/console/api"
)

func TestBatchesToRows(t *testing.T) {
	rows := batchesToRows([]api.Batch{{
		ID:        "0b0e8f2c-1111-2222-3333-444455556666",
		Model:     "steam-reforming-pilot",
		Status:    "running",
		Total:     45,
		Completed: 12,
		Converged: 10,
		Failed:    1,
		Warning:   1,
		StartedAt: time.Now().Add(-5 * time.Minute),
	}})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][0] != "0b0e8f2c" {
		t.Fatalf("expected shortened id, got %q", rows[0][0])
	}
	if rows[0][4] != "5m ago" {
		t.Fatalf("expected relative time, got %q", rows[0][4])
	}
}

func TestSimulationsToRowsWithoutConditions(t *testing.T) {
	rows := simulationsToRows([]api.Simulation{{
		ID:       7,
		BiooilID: 2,
		Status:   "Failed",
	}})

	if rows[0][3] != "-" || rows[0][4] != "-" {
		t.Fatalf("expected placeholder condition cells, got %v", rows[0])
	}
}

func TestSimulationsToRowsWithConditions(t *testing.T) {
	rows := simulationsToRows([]api.Simulation{{
		ID:         7,
		BiooilID:   2,
		Status:     "Converged",
		Conditions: &api.Condition{TemperatureC: 800, PressureBar: 17.5},
	}})

	if rows[0][3] != "800" {
		t.Fatalf("expected temperature cell, got %q", rows[0][3])
	}
	if rows[0][4] != "17.5" {
		t.Fatalf("expected pressure cell, got %q", rows[0][4])
	}
}

func TestParseID(t *testing.T) {
	if id, ok := parseID("42"); !ok || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, ok)
	}
	if _, ok := parseID("-"); ok {
		t.Fatal("expected parse failure for placeholder")
	}
}

func TestDistributeWidthsCoversTotal(t *testing.T) {
	widths := distributeWidths(60, []int{2, 1, 1})
	if len(widths) != 3 {
		t.Fatalf("expected 3 widths, got %d", len(widths))
	}

	sum := 0
	for _, w := range widths {
		if w < 6 {
			t.Fatalf("width below minimum: %v", widths)
		}
		sum += w
	}
	if sum < 60 {
		t.Fatalf("widths do not cover total: %v", widths)
	}
}

func TestRelativeTimeBuckets(t *testing.T) {
	if got := relativeTime(time.Time{}); got != "-" {
		t.Fatalf("expected placeholder for zero time, got %q", got)
	}
	if got := relativeTime(time.Now().Add(-30 * time.Second)); got != "just now" {
		t.Fatalf("expected just now, got %q", got)
	}
	if got := relativeTime(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Fatalf("expected 3h ago, got %q", got)
	}
}
