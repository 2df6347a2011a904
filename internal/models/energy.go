package models

// EnergyBalance aggregates the energy inputs and outputs of one run.
type EnergyBalance struct {
	ID                       int64   `gorm:"column:Balance_Id;primaryKey;autoIncrement" json:"balance_id"`
	SimulationID             int64   `gorm:"column:Simulation_Id;uniqueIndex;not null" json:"simulation_id"`
	BiooilEnergyHHVMJ        float64 `gorm:"column:BiooilEnergy_HHV_MJ" json:"biooil_energy_hhv_mj"`
	PreheaterHeatMJ          float64 `gorm:"column:PreheaterHeat_MJ" json:"preheater_heat_mj"`
	ReformerHeatMJ           float64 `gorm:"column:ReformerHeat_MJ" json:"reformer_heat_mj"`
	TotalEnergyInputMJ       float64 `gorm:"column:TotalEnergyInput_MJ" json:"total_energy_input_mj"`
	H2ProductHHVMJ           float64 `gorm:"column:H2Product_HHV_MJ" json:"h2_product_hhv_mj"`
	TailGasEnergyMJ          float64 `gorm:"column:TailGasEnergy_MJ" json:"tail_gas_energy_mj"`
	HeatRecoveredMJ          float64 `gorm:"column:HeatRecovered_MJ" json:"heat_recovered_mj"`
	HeatLossMJ               float64 `gorm:"column:HeatLoss_MJ" json:"heat_loss_mj"`
	ThermalEfficiencyPercent float64 `gorm:"column:Thermal_Efficiency_percent" json:"thermal_efficiency_percent"`
	CarbonEfficiencyPercent  float64 `gorm:"column:Carbon_Efficiency_percent" json:"carbon_efficiency_percent"`
}

// TableName preserves the legacy table name.
func (EnergyBalance) TableName() string { return "EnergyBalance" }
