package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSlice(t *testing.T) {
	assert.NoError(t, StringSlice([]string{"a", "b"}, []string{"a", "b"}))
	assert.ErrorIs(t, StringSlice([]string{"a"}, []string{"a", "b"}), ErrNotEqual)
	assert.ErrorIs(t, StringSlice([]string{"a", "b"}, []string{"a", "c"}), ErrNotEqual)
}

func TestFloat64Slice(t *testing.T) {
	assert.NoError(t, Float64Slice([]float64{650, 700}, []float64{650.0000001, 700}, 1e-6))
	assert.ErrorIs(t, Float64Slice([]float64{650}, []float64{651}, 1e-6), ErrNotEqual)
	assert.ErrorIs(t, Float64Slice([]float64{650}, []float64{650, 700}, 1e-6), ErrNotEqual)
}
