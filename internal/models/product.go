package models

// HydrogenProduct holds the dependent output metrics for a converged run,
// the values the downstream models train against. Absent for failed runs.
type HydrogenProduct struct {
	ID                      int64   `gorm:"column:Product_Id;primaryKey;autoIncrement" json:"product_id"`
	SimulationID            int64   `gorm:"column:Simulation_Id;uniqueIndex;not null" json:"simulation_id"`
	H2YieldKg               float64 `gorm:"column:H2_Yield_kg" json:"h2_yield_kg"`
	H2PurityPercent         float64 `gorm:"column:H2_Purity_percent" json:"h2_purity_percent"`
	H2FlowRateKgh           float64 `gorm:"column:H2_FlowRate_kgh" json:"h2_flow_rate_kgh"`
	H2FlowRateNm3h          float64 `gorm:"column:H2_FlowRate_Nm3h" json:"h2_flow_rate_nm3h"`
	H2CORatio               float64 `gorm:"column:H2_CO_Ratio" json:"h2_co_ratio"`
	H2CO2Ratio              float64 `gorm:"column:H2_CO2_Ratio" json:"h2_co2_ratio"`
	CO2ProductionKg         float64 `gorm:"column:CO2_Production_kg" json:"co2_production_kg"`
	CO2PurityPercent        float64 `gorm:"column:CO2_Purity_percent" json:"co2_purity_percent"`
	CH4SlipPercent          float64 `gorm:"column:CH4_Slip_percent" json:"ch4_slip_percent"`
	COSlipPpm               float64 `gorm:"column:CO_Slip_ppm" json:"co_slip_ppm"`
	CarbonConversionPercent float64 `gorm:"column:Carbon_Conversion_percent" json:"carbon_conversion_percent"`
	H2RecoveryPSAPercent    float64 `gorm:"column:H2_Recovery_PSA_percent" json:"h2_recovery_psa_percent"`
	EnergyEfficiencyPercent float64 `gorm:"column:Energy_Efficiency_percent" json:"energy_efficiency_percent"`
	SpecificEnergyMJperKgH2 float64 `gorm:"column:Specific_Energy_MJperkg_H2" json:"specific_energy_mjperkg_h2"`
	TailGasFlowRateKgh      float64 `gorm:"column:TailGas_FlowRate_kgh" json:"tail_gas_flow_rate_kgh"`
	TailGasHHVMJperKg       float64 `gorm:"column:TailGas_HHV_MJperkg" json:"tail_gas_hhv_mjperkg"`
}

// TableName preserves the legacy table name.
func (HydrogenProduct) TableName() string { return "HydrogenProduct" }
