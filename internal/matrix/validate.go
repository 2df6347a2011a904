package matrix

import (
	"math"

	"github.com/pkg/errors"
)

// Validate checks the structural invariants of a generated matrix: the row
// count is a whole number of grids, case ids are unique and contiguous,
// every oil covers the grid exactly once, and the numeric columns are
// plausible.
func Validate(rows []Row) error {
	if len(rows) == 0 {
		return errors.New("matrix is empty")
	}
	if len(rows)%Size() != 0 {
		return errors.Errorf("row count %d is not a multiple of the %d-point grid", len(rows), Size())
	}

	oils := len(rows) / Size()
	cases := make(map[int64]struct{}, len(rows))
	perOil := make(map[int64]int, oils)
	perCondition := make(map[int]int, Size())

	for i, row := range rows {
		if _, dup := cases[row.CaseID]; dup {
			return errors.Errorf("duplicate case id %d", row.CaseID)
		}
		cases[row.CaseID] = struct{}{}
		if row.CaseID < 1 || row.CaseID > int64(len(rows)) {
			return errors.Errorf("case id %d outside 1..%d", row.CaseID, len(rows))
		}

		if row.ConditionID < 1 || row.ConditionID > Size() {
			return errors.Errorf("row %d: condition id %d outside 1..%d", i+1, row.ConditionID, Size())
		}
		perOil[row.BiooilID]++
		perCondition[row.ConditionID]++

		for name, value := range row.Fractions() {
			if value < 0 || math.IsNaN(value) {
				return errors.Errorf("row %d: invalid %s fraction %f", i+1, name, value)
			}
		}
		if row.FeedRateKgh <= 0 {
			return errors.Errorf("row %d: non-positive feed rate", i+1)
		}
		if row.SteamRateKgh <= 0 {
			return errors.Errorf("row %d: non-positive steam rate", i+1)
		}
		if row.TemperatureC <= 0 || row.PressureBar <= 0 || row.SteamToCarbon <= 0 {
			return errors.Errorf("row %d: non-positive condition", i+1)
		}
	}

	for id, count := range perOil {
		if count != Size() {
			return errors.Errorf("biooil %d appears %d times, want %d", id, count, Size())
		}
	}
	for id, count := range perCondition {
		if count != oils {
			return errors.Errorf("condition %d appears %d times, want %d", id, count, oils)
		}
	}

	return nil
}
