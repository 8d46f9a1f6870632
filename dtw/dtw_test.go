package dtw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	t.Run("KnownValue", func(t *testing.T) {
		d, err := Distance([]float64{1, 2, 3}, []float64{2, 3, 4})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, d, 1e-12)
	})

	t.Run("SelfZero", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for n := 0; n < 10; n++ {
			seq := make([]float64, 20)
			for i := range seq {
				seq[i] = rng.NormFloat64()
			}
			d, err := Distance(seq, seq)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, d, 1e-12)
		}
	})

	t.Run("Symmetry", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		for n := 0; n < 10; n++ {
			a := make([]float64, 15)
			b := make([]float64, 25)
			for i := range a {
				a[i] = rng.NormFloat64()
			}
			for i := range b {
				b[i] = rng.NormFloat64()
			}
			ab, err := Distance(a, b)
			require.NoError(t, err)
			ba, err := Distance(b, a)
			require.NoError(t, err)
			assert.InDelta(t, ab, ba, 1e-12)
		}
	})

	t.Run("DifferentLengths", func(t *testing.T) {
		// A stretched copy of the same shape should align cheaply.
		a := []float64{0, 1, 2, 3, 4}
		b := []float64{0, 0, 1, 1, 2, 2, 3, 3, 4, 4}
		d, err := Distance(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d, 1e-12)
	})

	t.Run("NonNegative", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for n := 0; n < 20; n++ {
			a := make([]float64, 8)
			b := make([]float64, 12)
			for i := range a {
				a[i] = rng.NormFloat64() * 10
			}
			for i := range b {
				b[i] = rng.NormFloat64() * 10
			}
			d, err := Distance(a, b)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, d, 0.0)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := Distance(nil, []float64{1})
		require.ErrorIs(t, err, ErrEmptySequence)

		_, err = Distance([]float64{1}, nil)
		require.ErrorIs(t, err, ErrEmptySequence)
	})

	t.Run("SinglePoint", func(t *testing.T) {
		d, err := Distance([]float64{1}, []float64{4})
		require.NoError(t, err)
		assert.InDelta(t, 3.0, d, 1e-12)
	})
}
