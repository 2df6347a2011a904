package app

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reformlab/reformer/cmd/console/api"
)

func loadedModel() Model {
	m := New(nil)
	updated, _ := m.Update(dataLoadedMsg{
		batches: []api.Batch{{ID: "pass-1", Model: "steam-reforming-pilot", Status: "completed"}},
		simulations: []api.Simulation{
			{ID: 1, BiooilID: 2, Status: "Converged"},
			{ID: 2, BiooilID: 2, Status: "Failed"},
		},
		stats: &api.StatsResponse{},
	})
	return updated.(Model)
}

func TestSectionCycling(t *testing.T) {
	if sectionBatches.next() != sectionSimulations {
		t.Fatal("expected batches -> runs")
	}
	if sectionStats.next() != sectionBatches {
		t.Fatal("expected wrap around to batches")
	}
	if sectionBatches.prev() != sectionStats {
		t.Fatal("expected batches -> stats backwards")
	}
}

func TestDataLoadedPopulatesTables(t *testing.T) {
	m := loadedModel()
	if m.state != stateReady {
		t.Fatalf("expected ready state, got %d", m.state)
	}
	if len(m.batches.Rows()) != 1 {
		t.Fatalf("expected 1 batch row, got %d", len(m.batches.Rows()))
	}
	if len(m.simulations.Rows()) != 2 {
		t.Fatalf("expected 2 run rows, got %d", len(m.simulations.Rows()))
	}
}

func TestErrMsgSwitchesToErrorState(t *testing.T) {
	m := New(nil)
	updated, _ := m.Update(errMsg(errors.New("connection refused")))
	got := updated.(Model)
	if got.state != stateError {
		t.Fatal("expected error state")
	}
	if !strings.Contains(got.View(), "connection refused") {
		t.Fatal("expected error text in view")
	}
}

func TestNumberKeysSwitchSections(t *testing.T) {
	m := loadedModel()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	got := updated.(Model)
	if got.active != sectionStats {
		t.Fatalf("expected stats section, got %d", got.active)
	}
}

func TestEscClosesDetail(t *testing.T) {
	m := loadedModel()
	m.showDetail = true
	m.detail = &api.Simulation{ID: 1}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got := updated.(Model)
	if got.showDetail {
		t.Fatal("expected detail pane to close")
	}
}

func TestDetailLoadedMsg(t *testing.T) {
	m := loadedModel()
	m.showDetail = true
	m.detailPending = true

	updated, _ := m.Update(detailLoadedMsg{simulation: &api.Simulation{ID: 9, Status: "Converged"}})
	got := updated.(Model)
	if got.detailPending {
		t.Fatal("expected pending flag cleared")
	}
	if got.detail == nil || got.detail.ID != 9 {
		t.Fatalf("detail not stored: %+v", got.detail)
	}
	if !strings.Contains(got.View(), "Run #9") {
		t.Fatal("expected detail header in view")
	}
}

func TestQuitKey(t *testing.T) {
	m := loadedModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("expected quit message")
	}
}
