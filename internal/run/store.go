package run

import (
	"sync"
	"time"

	"github.com/reformlab/reformer/internal/metrics"
	"github.com/reformlab/reformer/internal/models"
)

// CaseStatus tracks one matrix row through the live pass.
type CaseStatus string

const (
	CaseRunning   CaseStatus = "running"
	CaseConverged CaseStatus = "converged"
	CaseFailed    CaseStatus = "failed"
	CaseWarning   CaseStatus = "warning"
	CaseSkipped   CaseStatus = "skipped"
)

// Case is the live view of one matrix row inside a pass.
type Case struct {
	Index         int        `json:"index"`
	CaseID        int64      `json:"case_id"`
	SimulationID  int64      `json:"simulation_id,omitempty"`
	BiooilID      int64      `json:"biooil_id"`
	TemperatureC  float64    `json:"temperature_c"`
	PressureBar   float64    `json:"pressure_bar"`
	SteamToCarbon float64    `json:"steam_to_carbon"`
	Status        CaseStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Pass is the live view of one batch invocation. Durable state lives on
// the BatchPass row; this mirror exists so the API can serve progress
// without polling the database mid-transaction.
type Pass struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Model       string             `json:"model"`
	Engine      string             `json:"engine"`
	Status      models.BatchStatus `json:"status"`
	Total       int                `json:"total"`
	Completed   int                `json:"completed"`
	Converged   int                `json:"converged"`
	Failed      int                `json:"failed"`
	Warning     int                `json:"warning"`
	Skipped     int                `json:"skipped"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Cases       []*Case            `json:"cases,omitempty"`
}

// Store holds the live state of every pass started by this process.
type Store struct {
	mu     sync.RWMutex
	passes map[string]*Pass
	order  []string
}

var defaultStore = NewStore()

// NewStore creates an empty live store.
func NewStore() *Store {
	return &Store{passes: make(map[string]*Pass)}
}

// Default returns the process-wide store shared by the driver and the API.
func Default() *Store {
	return defaultStore
}

// Start registers a new pass.
func (s *Store) Start(id, source, model, engine string, total int) *Pass {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass := &Pass{
		ID:        id,
		Source:    source,
		Model:     model,
		Engine:    engine,
		Status:    models.BatchRunning,
		Total:     total,
		StartedAt: time.Now().UTC(),
		Cases:     make([]*Case, 0, total),
	}
	s.passes[id] = pass
	s.order = append(s.order, id)

	metrics.BatchesActive.WithLabelValues(engine).Inc()
	return copyPass(pass)
}

// StartCase marks one matrix row as in flight.
func (s *Store) StartCase(passID string, c Case) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, ok := s.passes[passID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	c.Status = CaseRunning
	c.StartedAt = &now
	pass.Cases = append(pass.Cases, &c)
}

// CompleteCase records the terminal status of an in-flight row.
func (s *Store) CompleteCase(passID string, index int, simID int64, status models.ConvergenceStatus, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, ok := s.passes[passID]
	if !ok {
		return
	}

	pass.Completed++
	switch status {
	case models.StatusConverged:
		pass.Converged++
	case models.StatusFailed:
		pass.Failed++
	case models.StatusWarning:
		pass.Warning++
	}

	if c := pass.caseAt(index); c != nil {
		now := time.Now().UTC()
		c.SimulationID = simID
		c.Status = caseStatus(status)
		c.Error = errText
		c.CompletedAt = &now
	}

	metrics.SimulationRunsTotal.WithLabelValues(passID, string(status)).Inc()
}

// SkipCase records a row bypassed by resume. Skipped rows are counted but
// not materialized as cases: a resumed pass can skip hundreds of rows
// before its first solve.
func (s *Store) SkipCase(passID, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, ok := s.passes[passID]
	if !ok {
		return
	}
	pass.Skipped++

	metrics.RowsSkippedTotal.WithLabelValues(passID, source).Inc()
}

// Complete closes out a pass.
func (s *Store) Complete(passID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, ok := s.passes[passID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	pass.CompletedAt = &now

	if err != nil {
		pass.Status = models.BatchFailed
		pass.Error = err.Error()
	} else {
		pass.Status = models.BatchCompleted
		pass.Error = ""
	}

	metrics.BatchesActive.WithLabelValues(pass.Engine).Dec()
}

// Get returns a snapshot of one pass.
func (s *Store) Get(passID string) (*Pass, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pass, ok := s.passes[passID]
	if !ok {
		return nil, false
	}
	return copyPass(pass), true
}

// List returns snapshots of every pass in start order.
func (s *Store) List() []*Pass {
	s.mu.RLock()
	defer s.mu.RUnlock()

	passes := make([]*Pass, 0, len(s.order))
	for _, id := range s.order {
		if pass, ok := s.passes[id]; ok {
			passes = append(passes, copyPass(pass))
		}
	}
	return passes
}

// Latest returns the most recently started pass, nil when none exist.
func (s *Store) Latest() *Pass {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil
	}
	pass, ok := s.passes[s.order[len(s.order)-1]]
	if !ok {
		return nil
	}
	return copyPass(pass)
}

func (p *Pass) caseAt(index int) *Case {
	for i := len(p.Cases) - 1; i >= 0; i-- {
		if p.Cases[i].Index == index {
			return p.Cases[i]
		}
	}
	return nil
}

func caseStatus(status models.ConvergenceStatus) CaseStatus {
	switch status {
	case models.StatusConverged:
		return CaseConverged
	case models.StatusWarning:
		return CaseWarning
	default:
		return CaseFailed
	}
}

func copyPass(src *Pass) *Pass {
	if src == nil {
		return nil
	}

	dst := *src
	if src.CompletedAt != nil {
		completed := *src.CompletedAt
		dst.CompletedAt = &completed
	}

	dst.Cases = make([]*Case, len(src.Cases))
	for i, c := range src.Cases {
		if c == nil {
			continue
		}
		copied := *c
		if c.StartedAt != nil {
			started := *c.StartedAt
			copied.StartedAt = &started
		}
		if c.CompletedAt != nil {
			finished := *c.CompletedAt
			copied.CompletedAt = &finished
		}
		dst.Cases[i] = &copied
	}

	return &dst
}
