package kdtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/curvego/distance"
)

func randomPoints(rng *rand.Rand, n, dim int) [][]float64 {
	points := make([][]float64, n)
	for i := range points {
		p := make([]float64, dim)
		for j := range p {
			p[j] = rng.NormFloat64()
		}
		points[i] = p
	}
	return points
}

// bruteKNN is the linear-scan ground truth the tree must reproduce.
func bruteKNN(points [][]float64, target []float64, k int, filter func(uint32) bool) []Neighbor {
	out := make([]Neighbor, 0, len(points))
	for i, p := range points {
		if filter != nil && !filter(uint32(i)) {
			continue
		}
		out = append(out, Neighbor{ID: uint32(i), Distance: distance.Euclidean(target, p)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tree, err := Build(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, tree.Len())

		got, err := tree.KNN([]float64{1, 2}, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Build([][]float64{{1, 2}, {3}})
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 1, dm.Actual)
	})

	t.Run("Deterministic", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		points := randomPoints(rng, 64, 10)
		target := randomPoints(rng, 1, 10)[0]

		a, err := Build(points)
		require.NoError(t, err)
		b, err := Build(points)
		require.NoError(t, err)

		ra, err := a.KNN(target, 5)
		require.NoError(t, err)
		rb, err := b.KNN(target, 5)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	})
}

func TestKNN(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := randomPoints(rng, 200, 10)
	tree, err := Build(points)
	require.NoError(t, err)

	t.Run("MatchesBruteForce", func(t *testing.T) {
		for _, k := range []int{1, 3, 17, 50, 200} {
			target := randomPoints(rng, 1, 10)[0]

			got, err := tree.KNN(target, k)
			require.NoError(t, err)
			want := bruteKNN(points, target, k, nil)

			require.Len(t, got, len(want), "k=%d", k)
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID, "k=%d rank=%d", k, i)
				assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-9)
			}
		}
	})

	t.Run("SortedAscending", func(t *testing.T) {
		target := randomPoints(rng, 1, 10)[0]
		got, err := tree.KNN(target, 25)
		require.NoError(t, err)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
		}
	})

	t.Run("KExceedsSize", func(t *testing.T) {
		target := randomPoints(rng, 1, 10)[0]
		got, err := tree.KNN(target, 1000)
		require.NoError(t, err)
		assert.Len(t, got, 200)
	})

	t.Run("InvalidK", func(t *testing.T) {
		_, err := tree.KNN(randomPoints(rng, 1, 10)[0], 0)
		require.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("QueryDimensionMismatch", func(t *testing.T) {
		_, err := tree.KNN([]float64{1, 2, 3}, 1)
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
	})

	t.Run("Filter", func(t *testing.T) {
		filter := func(id uint32) bool { return id%3 == 0 }
		target := randomPoints(rng, 1, 10)[0]

		got, err := tree.KNN(target, 10, func(o *SearchOptions) {
			o.Filter = filter
		})
		require.NoError(t, err)
		want := bruteKNN(points, target, 10, filter)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Zero(t, got[i].ID%3)
		}
	})
}

func TestKNNSmallCorpus(t *testing.T) {
	// Pool sizes routinely exceed corpus size; every point must come back.
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	tree, err := Build(points)
	require.NoError(t, err)

	got, err := tree.KNN([]float64{0.1, 0.1}, 50)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint32(0), got[0].ID)
}
