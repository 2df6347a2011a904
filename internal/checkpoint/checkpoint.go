// Package checkpoint persists batch progress to a small JSON state file,
// so an interrupted pass resumes where it stopped instead of reprocessing
// the matrix.
package checkpoint

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/models"
)

// State is the progress record, rewritten after every terminal row.
type State struct {
	BatchID string `json:"batch_id"`

	// LastIndex is the 0-based matrix position of the last terminal
	// row, -1 before any row completes.
	LastIndex    int   `json:"last_index"`
	SimulationID int64 `json:"simulation_id"`

	Completed int `json:"completed"`
	Converged int `json:"converged"`
	Failed    int `json:"failed"`
	Warning   int `json:"warning"`
	Skipped   int `json:"skipped"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns a fresh checkpoint for the given batch.
func NewState(batchID string) *State {
	return &State{BatchID: batchID, LastIndex: -1}
}

// Observe folds one terminal row into the running counts.
func (s *State) Observe(index int, simID int64, status models.ConvergenceStatus) {
	s.LastIndex = index
	s.SimulationID = simID
	s.Completed++

	switch status {
	case models.StatusConverged:
		s.Converged++
	case models.StatusFailed:
		s.Failed++
	case models.StatusWarning:
		s.Warning++
	}
}

// Skip records a row bypassed by resume.
func (s *State) Skip(index int) {
	s.LastIndex = index
	s.Skipped++
}

// Save writes the state atomically: temp file in the same directory, then
// rename, so a crash mid-write leaves the previous checkpoint intact.
func Save(path string, state *State) error {
	state.UpdatedAt = time.Now().UTC()

	buf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode checkpoint")
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0o644); err != nil {
		return errors.Wrap(err, "write checkpoint")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "rename checkpoint")
	}
	return nil
}

// Load reads a checkpoint. A missing file is a fresh start, not an error:
// both return values are nil.
func Load(path string) (*State, error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read checkpoint")
	}

	state := new(State)
	if err := json.Unmarshal(buf, state); err != nil {
		return nil, errors.Wrap(err, "decode checkpoint")
	}
	return state, nil
}
