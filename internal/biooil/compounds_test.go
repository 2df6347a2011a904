package biooil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	norm, err := Normalize(map[string]float64{
		"aromatics":       47.31,
		"acids":           13.20,
		"alcohols":        15.10,
		"furans":          0.25,
		"phenols":         0.00,
		"aldehyde_ketone": 0.49,
	})
	require.NoError(t, err)

	var sum float64
	for _, v := range norm {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 47.31/76.35, norm["aromatics"], 1e-9)
	assert.Zero(t, norm["phenols"])
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(map[string]float64{})
	assert.ErrorIs(t, err, ErrEmptyComposition)
}

func TestElementMassFractionsCloseOverFamilies(t *testing.T) {
	for name, compound := range Families {
		if total := compound.C + compound.H + compound.O; math.Abs(total-1.0) > 2e-3 {
			t.Fatalf("%s elemental split sums to %f", name, total)
		}
	}
}

func TestElementMassFractions(t *testing.T) {
	norm := map[string]float64{"aromatics": 0.5, "acids": 0.5}
	c, h, o := ElementMassFractions(norm)

	assert.InDelta(t, 0.5*0.9130+0.5*0.4000, c, 1e-9)
	assert.InDelta(t, 0.5*0.0870+0.5*0.0667, h, 1e-9)
	assert.InDelta(t, 0.5*0.5333, o, 1e-9)
}

func TestSteamRateKgh(t *testing.T) {
	// Pure toluene feed at 100 kg/h carries 91.3 kg/h carbon, 7.601 kmol/h.
	norm := map[string]float64{"aromatics": 1.0}
	got := SteamRateKgh(100, 3.0, norm)
	want := 3.0 * (100 * 0.9130 / MolarMassCarbon) * MolarMassWater
	assert.InDelta(t, want, got, 1e-9)
	assert.InDelta(t, 410.8, got, 0.5)
}

func TestHHVMJPerKg(t *testing.T) {
	assert.InDelta(t, 42.4, HHVMJPerKg(map[string]float64{"aromatics": 1.0}), 1e-9)
	assert.InDelta(t, (42.4+14.6)/2, HHVMJPerKg(map[string]float64{"aromatics": 0.5, "acids": 0.5}), 1e-9)
}
