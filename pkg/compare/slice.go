package compare

import (
	"fmt"
	"math"
)

var (
	ErrNotEqual = fmt.Errorf("objects are not equivalent")
)

func StringSlice(a, b []string) error {
	if len(a) != len(b) {
		return ErrNotEqual
	}

	for i, v := range a {
		if v != b[i] {
			return ErrNotEqual
		}
	}

	return nil
}

// Float64Slice compares two slices element-wise within an absolute
// tolerance.
func Float64Slice(a, b []float64, tolerance float64) error {
	if len(a) != len(b) {
		return ErrNotEqual
	}

	for i, v := range a {
		if math.Abs(v-b[i]) > tolerance {
			return ErrNotEqual
		}
	}

	return nil
}
