package models

// ReformingCondition holds the independent experimental variables for one
// run: the DOE point plus the fixed plant setpoints.
type ReformingCondition struct {
	ID                   int64   `gorm:"column:Condition_Id;primaryKey;autoIncrement" json:"condition_id"`
	SimulationID         int64   `gorm:"column:Simulation_Id;uniqueIndex;not null" json:"simulation_id"`
	ReformerTemperatureC float64 `gorm:"column:ReformerTemperature_C;not null" json:"reformer_temperature_c"`
	ReformerPressureBar  float64 `gorm:"column:ReformerPressure_bar;not null" json:"reformer_pressure_bar"`
	SteamToCarbonRatio   float64 `gorm:"column:SteamToCarbonRatio;not null" json:"steam_to_carbon_ratio"`
	BiooilFeedRateKgh    float64 `gorm:"column:BiooilFeedRate_kgh" json:"biooil_feed_rate_kgh"`
	SteamFeedRateKgh     float64 `gorm:"column:SteamFeedRate_kgh" json:"steam_feed_rate_kgh"`
	ResidenceTimeMin     float64 `gorm:"column:ResidenceTime_min" json:"residence_time_min"`
	CatalystWeightKg     float64 `gorm:"column:CatalystWeight_kg" json:"catalyst_weight_kg"`
	GHSVh1               float64 `gorm:"column:GHSV_h1" json:"ghsv_h1"`
	HTSTemperatureC      float64 `gorm:"column:HTS_Temperature_C" json:"hts_temperature_c"`
	LTSTemperatureC      float64 `gorm:"column:LTS_Temperature_C" json:"lts_temperature_c"`
	PSAPressureBar       float64 `gorm:"column:PSA_Pressure_bar" json:"psa_pressure_bar"`
}

// TableName preserves the legacy table name.
func (ReformingCondition) TableName() string { return "ReformingConditions" }
