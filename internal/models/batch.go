package models

import (
	"time"

	"gorm.io/datatypes"
)

// BatchStatus tracks the lifecycle of one sweep over the condition matrix.
type BatchStatus string

const (
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// BatchPass records one execution of the pipeline over a set of cases.
// Counts are updated as the driver finishes each case, so a crashed pass
// still shows how far it got.
type BatchPass struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	Source      string            `json:"source"`
	Fingerprint string            `gorm:"index" json:"fingerprint"`
	Model       string            `json:"model"`
	Engine      string            `json:"engine"`
	Status      BatchStatus       `gorm:"index" json:"status"`
	Total       int               `json:"total"`
	Completed   int               `json:"completed"`
	Converged   int               `json:"converged"`
	Failed      int               `json:"failed"`
	Warning     int               `json:"warning"`
	Skipped     int               `json:"skipped"`
	Labels      datatypes.JSONMap `json:"labels,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Remaining reports how many cases the pass has not yet finished.
func (b *BatchPass) Remaining() int {
	r := b.Total - b.Completed - b.Skipped
	if r < 0 {
		return 0
	}
	return r
}
