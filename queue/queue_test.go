package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("MinOrder", func(t *testing.T) {
		q := NewMin(8)
		for _, d := range []float64{5, 1, 3, 2, 4} {
			q.Push(Item{ID: uint32(d), Distance: d})
		}

		var got []float64
		for q.Len() > 0 {
			item, ok := q.Pop()
			require.True(t, ok)
			got = append(got, item.Distance)
		}
		assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
	})

	t.Run("MaxTop", func(t *testing.T) {
		q := NewMax(8)
		for _, d := range []float64{2, 9, 4} {
			q.Push(Item{Distance: d})
		}
		top, ok := q.Top()
		require.True(t, ok)
		assert.Equal(t, 9.0, top.Distance)
	})

	t.Run("EmptyPop", func(t *testing.T) {
		q := NewMin(1)
		_, ok := q.Pop()
		assert.False(t, ok)
		_, ok = q.Top()
		assert.False(t, ok)
	})

	t.Run("Reset", func(t *testing.T) {
		q := NewMin(4)
		q.Push(Item{Distance: 1})
		q.Reset()
		assert.Equal(t, 0, q.Len())
	})
}

func TestPushBounded(t *testing.T) {
	t.Run("KeepsKSmallest", func(t *testing.T) {
		const k = 5
		rng := rand.New(rand.NewSource(11))

		all := make([]float64, 100)
		q := NewMax(k)
		for i := range all {
			all[i] = rng.Float64() * 1000
			q.PushBounded(Item{ID: uint32(i), Distance: all[i]}, k)
		}
		sort.Float64s(all)

		require.Equal(t, k, q.Len())
		got := make([]float64, 0, k)
		for q.Len() > 0 {
			item, _ := q.Pop()
			got = append(got, item.Distance)
		}
		sort.Float64s(got)
		assert.Equal(t, all[:k], got)
	})

	t.Run("RejectsWorseWhenFull", func(t *testing.T) {
		q := NewMax(2)
		require.True(t, q.PushBounded(Item{Distance: 1}, 2))
		require.True(t, q.PushBounded(Item{Distance: 2}, 2))
		assert.False(t, q.PushBounded(Item{Distance: 3}, 2))
		assert.True(t, q.PushBounded(Item{Distance: 0.5}, 2))

		top, _ := q.Top()
		assert.Equal(t, 1.0, top.Distance)
	})

	t.Run("EqualDistanceNotAdmitted", func(t *testing.T) {
		// Only a strictly better candidate evicts the current worst.
		q := NewMax(1)
		require.True(t, q.PushBounded(Item{ID: 1, Distance: 2}, 1))
		assert.False(t, q.PushBounded(Item{ID: 2, Distance: 2}, 1))

		top, _ := q.Top()
		assert.Equal(t, uint32(1), top.ID)
	})
}
