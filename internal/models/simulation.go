package models

import (
	"time"
)

// Simulation is the parent run record, one per (bio-oil, condition) pair.
// It is an append-once audit row: created Pending when the loop picks up an
// input row, updated exactly once when the row reaches a terminal status.
type Simulation struct {
	ID                        int64             `gorm:"column:Simulation_Id;primaryKey;autoIncrement" json:"simulation_id"`
	BiooilID                  int64             `gorm:"column:Biooil_Id;index;not null" json:"biooil_id"`
	SimulationDate            time.Time         `gorm:"column:SimulationDate;not null" json:"simulation_date"`
	AspenVersion              string            `gorm:"column:AspenVersion;type:text" json:"aspen_version"`
	ConvergenceStatus         ConvergenceStatus `gorm:"column:ConvergenceStatus;type:text;index;not null" json:"convergence_status"`
	ConvergenceIterations     int               `gorm:"column:ConvergenceIterations" json:"convergence_iterations"`
	MassBalanceErrorPercent   float64           `gorm:"column:MassBalanceError_percent" json:"mass_balance_error_percent"`
	EnergyBalanceErrorPercent float64           `gorm:"column:EnergyBalanceError_percent" json:"energy_balance_error_percent"`
	Warnings                  string            `gorm:"column:Warnings;type:text" json:"warnings,omitempty"`
	Notes                     string            `gorm:"column:Notes;type:text" json:"notes,omitempty"`
	ValidationFlag            int               `gorm:"column:ValidationFlag;not null;default:0" json:"validation_flag"`

	Biooil     *Biooil              `gorm:"foreignKey:BiooilID" json:"biooil,omitempty"`
	Conditions *ReformingCondition  `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE" json:"conditions,omitempty"`
	Product    *HydrogenProduct     `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Syngas     []*SyngasComposition `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE" json:"syngas,omitempty"`
	Energy     *EnergyBalance       `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE" json:"energy,omitempty"`
}

// TableName preserves the legacy table name.
func (Simulation) TableName() string { return "AspenSimulation" }
