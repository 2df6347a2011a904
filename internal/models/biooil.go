package models

// Fraction names in canonical order, matching the composition columns.
var BiooilFractions = []string{
	"aromatics",
	"acids",
	"alcohols",
	"furans",
	"phenols",
	"aldehyde_ketone",
}

// Biooil is the feedstock composition record produced by the pyrolysis
// phase. It is immutable reference data here: the pipeline reads it, never
// writes it.
type Biooil struct {
	ID               int64    `gorm:"column:Biooil_Id;primaryKey;autoIncrement" json:"biooil_id"`
	AromaticsWt      *float64 `gorm:"column:Aromatics_wt" json:"aromatics_wt,omitempty"`
	AcidsWt          *float64 `gorm:"column:Acids_wt" json:"acids_wt,omitempty"`
	AlcoholsWt       *float64 `gorm:"column:Alcohols_wt" json:"alcohols_wt,omitempty"`
	FuransWt         *float64 `gorm:"column:Furans_wt" json:"furans_wt,omitempty"`
	PhenolsWt        *float64 `gorm:"column:Phenols_wt" json:"phenols_wt,omitempty"`
	AldehydeKetoneWt *float64 `gorm:"column:AldehydeKetone_wt" json:"aldehyde_ketone_wt,omitempty"`
	PyrolysisTempC   *float64 `gorm:"column:PyrolysisTemp_C" json:"pyrolysis_temp_c,omitempty"`
	BiomassName      string   `gorm:"column:BiomassName;type:text" json:"biomass_name,omitempty"`
	BiomassHHVMJkg   *float64 `gorm:"column:BiomassHHV_MJkg" json:"biomass_hhv_mjkg,omitempty"`
	Reference        string   `gorm:"column:Reference;type:text" json:"reference,omitempty"`
}

// TableName preserves the legacy table name.
func (Biooil) TableName() string { return "Biooil" }

// Complete reports whether all six composition fractions are populated.
func (b Biooil) Complete() bool {
	for _, f := range b.fractionFields() {
		if f == nil {
			return false
		}
	}
	return true
}

// FractionSum returns the sum of the six fractions in mass percent,
// treating missing fractions as zero.
func (b Biooil) FractionSum() float64 {
	var sum float64
	for _, f := range b.fractionFields() {
		if f != nil {
			sum += *f
		}
	}
	return sum
}

// Fractions returns the composition as mass percentages keyed by the
// canonical fraction names. Missing fractions map to zero.
func (b Biooil) Fractions() map[string]float64 {
	fields := b.fractionFields()
	out := make(map[string]float64, len(BiooilFractions))
	for i, name := range BiooilFractions {
		if fields[i] != nil {
			out[name] = *fields[i]
		} else {
			out[name] = 0
		}
	}
	return out
}

func (b Biooil) fractionFields() []*float64 {
	return []*float64{
		b.AromaticsWt,
		b.AcidsWt,
		b.AlcoholsWt,
		b.FuransWt,
		b.PhenolsWt,
		b.AldehydeKetoneWt,
	}
}
