package matrix

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/biooil"
	"github.com/reformlab/reformer/internal/models"
)

// Row is one planned simulation case: a bio-oil paired with one condition
// point, plus the derived feed rates.
type Row struct {
	CaseID           int64
	BiooilID         int64
	ConditionID      int
	AromaticsWt      float64
	AcidsWt          float64
	AlcoholsWt       float64
	FuransWt         float64
	PhenolsWt        float64
	AldehydeKetoneWt float64
	TemperatureC     float64
	PressureBar      float64
	SteamToCarbon    float64
	FeedRateKgh      float64
	SteamRateKgh     float64
}

// Fractions returns the raw composition keyed by the canonical fraction
// names.
func (r Row) Fractions() map[string]float64 {
	return map[string]float64{
		"aromatics":       r.AromaticsWt,
		"acids":           r.AcidsWt,
		"alcohols":        r.AlcoholsWt,
		"furans":          r.FuransWt,
		"phenols":         r.PhenolsWt,
		"aldehyde_ketone": r.AldehydeKetoneWt,
	}
}

// CaseKey identifies a (bio-oil, condition) pair independently of case
// numbering, so completed work can be recognized across passes.
func CaseKey(biooilID int64, temperatureC, pressureBar, steamToCarbon float64) string {
	return fmt.Sprintf("%d|%.3f|%.3f|%.3f", biooilID, temperatureC, pressureBar, steamToCarbon)
}

// Key returns the row's case key.
func (r Row) Key() string {
	return CaseKey(r.BiooilID, r.TemperatureC, r.PressureBar, r.SteamToCarbon)
}

// BuildRequest parameterizes matrix generation.
type BuildRequest struct {
	Oils        []models.Biooil
	FeedRateKgh float64
}

// Build crosses the selected oils with the condition grid. Case ids are
// assigned 1..N*45 in (bio-oil, condition) order. The steam feed is derived
// per row from the oil's carbon content and the point's steam-to-carbon
// ratio.
func Build(req *BuildRequest) ([]Row, error) {
	feed := req.FeedRateKgh
	if feed <= 0 {
		feed = DefaultFeedRateKgh
	}

	grid := Grid()
	rows := make([]Row, 0, len(req.Oils)*len(grid))
	caseID := int64(1)

	for _, oil := range req.Oils {
		if !oil.Complete() {
			return nil, errors.Errorf("biooil %d has missing fractions", oil.ID)
		}

		// Steam is dosed against the carbon in the oil as received, so
		// the fractions go in on a whole-oil mass basis.
		fractions := oil.Fractions()
		wholeOil := make(map[string]float64, len(fractions))
		for name, wt := range fractions {
			wholeOil[name] = wt / 100
		}
		if biooil.CarbonMassFraction(wholeOil) <= 0 {
			return nil, errors.Errorf("biooil %d carries no carbon", oil.ID)
		}

		for _, point := range grid {
			rows = append(rows, Row{
				CaseID:           caseID,
				BiooilID:         oil.ID,
				ConditionID:      point.ConditionID,
				AromaticsWt:      fractions["aromatics"],
				AcidsWt:          fractions["acids"],
				AlcoholsWt:       fractions["alcohols"],
				FuransWt:         fractions["furans"],
				PhenolsWt:        fractions["phenols"],
				AldehydeKetoneWt: fractions["aldehyde_ketone"],
				TemperatureC:     point.TemperatureC,
				PressureBar:      point.PressureBar,
				SteamToCarbon:    point.SteamToCarbon,
				FeedRateKgh:      feed,
				SteamRateKgh:     biooil.SteamRateKgh(feed, point.SteamToCarbon, wholeOil),
			})
			caseID++
		}
	}

	return rows, nil
}

// Fingerprint returns a stable digest of the matrix content, used to tie
// batch passes and cached results to the exact input they ran against.
func Fingerprint(rows []Row) string {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
