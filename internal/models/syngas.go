package models

// SyngasComposition is one sampled stream for a run; every converged run
// fans out to exactly one row per StreamLocation.
type SyngasComposition struct {
	ID                 int64          `gorm:"column:Syngas_Id;primaryKey;autoIncrement" json:"syngas_id"`
	SimulationID       int64          `gorm:"column:Simulation_Id;uniqueIndex:idx_syngas_sim_loc;not null" json:"simulation_id"`
	StreamLocation     StreamLocation `gorm:"column:StreamLocation;type:text;uniqueIndex:idx_syngas_sim_loc;not null" json:"stream_location"`
	H2MolPercent       float64        `gorm:"column:H2_molpercent" json:"h2_molpercent"`
	COMolPercent       float64        `gorm:"column:CO_molpercent" json:"co_molpercent"`
	CO2MolPercent      float64        `gorm:"column:CO2_molpercent" json:"co2_molpercent"`
	CH4MolPercent      float64        `gorm:"column:CH4_molpercent" json:"ch4_molpercent"`
	H2OMolPercent      float64        `gorm:"column:H2O_molpercent" json:"h2o_molpercent"`
	N2MolPercent       float64        `gorm:"column:N2_molpercent" json:"n2_molpercent"`
	TemperatureC       float64        `gorm:"column:Temperature_C" json:"temperature_c"`
	PressureBar        float64        `gorm:"column:Pressure_bar" json:"pressure_bar"`
	MassFlowRateKgh    float64        `gorm:"column:MassFlowRate_kgh" json:"mass_flow_rate_kgh"`
	MolarFlowRateKmolh float64        `gorm:"column:MolarFlowRate_kmolh" json:"molar_flow_rate_kmolh"`
}

// TableName preserves the legacy table name.
func (SyngasComposition) TableName() string { return "SyngasComposition" }

// MolPercentSum returns the total of the tracked component percentages,
// which should be close to 100 for a well-formed stream.
func (s SyngasComposition) MolPercentSum() float64 {
	return s.H2MolPercent + s.COMolPercent + s.CO2MolPercent +
		s.CH4MolPercent + s.H2OMolPercent + s.N2MolPercent
}
