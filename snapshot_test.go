package curvego

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/curvego/testutil"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		engine, err := New(ctx, threeStockCorpus(), WithSequenceLength(5))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, engine.SaveSnapshot(&buf))

		loaded, err := LoadSnapshot(ctx, &buf)
		require.NoError(t, err)
		assert.Equal(t, engine.Len(), loaded.Len())
		assert.Equal(t, engine.SequenceLength(), loaded.SequenceLength())

		result, err := loaded.Search([]float64{10, 11, 12, 11, 10}).KNN(1).Execute(ctx)
		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		assert.Equal(t, "A", result.Matches[0].ID)
		assert.InDelta(t, 0.0, result.Matches[0].Distance, 1e-6)
	})

	t.Run("SearchEquivalence", func(t *testing.T) {
		rng := testutil.NewRNG(21)
		seqs := rng.RandomWalkMatrix(30, 20)
		records := make([]Record, len(seqs))
		for i, s := range seqs {
			records[i] = Record{ID: recordID(i), Series: s}
		}
		engine, err := New(ctx, records)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, engine.SaveSnapshot(&buf))
		loaded, err := LoadSnapshot(ctx, &buf)
		require.NoError(t, err)

		query := rng.Noisy(seqs[4], 1)
		a, err := engine.Search(query).KNN(5).Execute(ctx)
		require.NoError(t, err)
		b, err := loaded.Search(query).KNN(5).Execute(ctx)
		require.NoError(t, err)

		require.Len(t, b.Matches, len(a.Matches))
		for i := range a.Matches {
			assert.Equal(t, a.Matches[i].ID, b.Matches[i].ID)
			assert.InDelta(t, a.Matches[i].Distance, b.Matches[i].Distance, 1e-9)
		}
	})

	t.Run("PreservesTags", func(t *testing.T) {
		records := threeStockCorpus()
		records[0].Tags = []string{"tech"}
		engine, err := New(ctx, records, WithSequenceLength(5))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, engine.SaveSnapshot(&buf))
		loaded, err := LoadSnapshot(ctx, &buf)
		require.NoError(t, err)

		assert.Equal(t, uint64(1), loaded.Tags().Cardinality("tech"))
	})

	t.Run("GarbageInput", func(t *testing.T) {
		_, err := LoadSnapshot(ctx, bytes.NewReader([]byte("not a snapshot")))
		require.Error(t, err)
	})
}
