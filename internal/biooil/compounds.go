package biooil

import (
	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/models"
)

// Molar masses, kg/kmol.
const (
	MolarMassCarbon = 12.011
	MolarMassWater  = 18.015
)

// Compound is the representative molecule for one lumped bio-oil family.
// The elemental split is the mass fraction of C, H and O in that molecule.
type Compound struct {
	Name    string
	C, H, O float64
	HHVMJkg float64
}

// Families maps each composition fraction to its representative compound.
// Aromatics are lumped as toluene, acids as acetic acid, alcohols as
// ethanol, furans as furan, phenols as phenol, and the aldehyde/ketone
// family as acetone.
var Families = map[string]Compound{
	"aromatics":       {Name: "toluene", C: 0.9130, H: 0.0870, O: 0.0000, HHVMJkg: 42.4},
	"acids":           {Name: "acetic-acid", C: 0.4000, H: 0.0667, O: 0.5333, HHVMJkg: 14.6},
	"alcohols":        {Name: "ethanol", C: 0.5217, H: 0.1304, O: 0.3478, HHVMJkg: 29.7},
	"furans":          {Name: "furan", C: 0.7059, H: 0.0588, O: 0.2353, HHVMJkg: 30.6},
	"phenols":         {Name: "phenol", C: 0.7660, H: 0.0638, O: 0.1702, HHVMJkg: 32.4},
	"aldehyde_ketone": {Name: "acetone", C: 0.6207, H: 0.1034, O: 0.2759, HHVMJkg: 30.8},
}

// ErrEmptyComposition signals a composition whose fractions sum to zero.
var ErrEmptyComposition = errors.New("biooil: composition sums to zero")

// Normalize rescales the mass-percent fractions so they sum to 1.0. Keys
// follow models.BiooilFractions; absent keys count as zero.
func Normalize(fractions map[string]float64) (map[string]float64, error) {
	var sum float64
	for _, name := range models.BiooilFractions {
		sum += fractions[name]
	}
	if sum <= 0 {
		return nil, ErrEmptyComposition
	}

	out := make(map[string]float64, len(models.BiooilFractions))
	for _, name := range models.BiooilFractions {
		out[name] = fractions[name] / sum
	}
	return out, nil
}

// CarbonMassFraction returns the carbon mass fraction of a normalized
// composition.
func CarbonMassFraction(normalized map[string]float64) float64 {
	var c float64
	for name, frac := range normalized {
		c += frac * Families[name].C
	}
	return c
}

// ElementMassFractions returns the carbon, hydrogen and oxygen mass
// fractions of a normalized composition.
func ElementMassFractions(normalized map[string]float64) (c, h, o float64) {
	for name, frac := range normalized {
		compound := Families[name]
		c += frac * compound.C
		h += frac * compound.H
		o += frac * compound.O
	}
	return c, h, o
}

// HHVMJPerKg returns the higher heating value of a normalized composition,
// mass-weighted over the family compounds.
func HHVMJPerKg(normalized map[string]float64) float64 {
	var hhv float64
	for name, frac := range normalized {
		hhv += frac * Families[name].HHVMJkg
	}
	return hhv
}

// SteamRateKgh converts a steam-to-carbon ratio into a steam mass flow for
// the given feed. S/C is a molar ratio, so the feed's carbon content is
// taken through kmol. The fractions are mass fractions of the feed as fed,
// so an oil with unreported moisture draws proportionally less steam.
func SteamRateKgh(feedRateKgh, steamToCarbon float64, fractions map[string]float64) float64 {
	carbonKmolh := feedRateKgh * CarbonMassFraction(fractions) / MolarMassCarbon
	return steamToCarbon * carbonKmolh * MolarMassWater
}
