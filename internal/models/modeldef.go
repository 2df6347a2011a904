package models

import (
	"time"

	"gorm.io/datatypes"
)

// ModelDefinition is a flowsheet model stored in the registry. Source holds
// the raw YAML exactly as imported; Checksum detects drift between the
// stored copy and the file it came from.
type ModelDefinition struct {
	ID       string            `gorm:"primaryKey" json:"id"`
	Name     string            `gorm:"uniqueIndex;not null" json:"name"`
	Engine   string            `json:"engine"`
	Version  string            `json:"version"`
	Source   string            `gorm:"type:text" json:"source"`
	Checksum string            `json:"checksum"`
	Labels   datatypes.JSONMap `json:"labels,omitempty"`

	// Provenance of the imported file. SourceID names the configured
	// registry source, the rest pin the exact git object.
	SourceID string `gorm:"index" json:"source_id,omitempty"`
	Repo     string `json:"repo,omitempty"`
	Ref      string `json:"ref,omitempty"`
	Commit   string `json:"commit,omitempty"`
	Path     string `json:"path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
