// Package testutil provides deterministic data generators and brute-force
// ground truth helpers for tests and benchmarks.
package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/curvego/dtw"
	"github.com/hupe1980/curvego/feature"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a normally distributed pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// RandomWalkSeries generates a geometric random-walk price series of the
// given length starting at start with per-step volatility.
func (r *RNG) RandomWalkSeries(length int, start, volatility float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, length)
	price := start
	for i := range out {
		out[i] = price
		price *= 1 + r.rand.NormFloat64()*volatility
	}
	return out
}

// RandomWalkMatrix generates num random-walk series with randomized start
// prices in [10,200) and volatilities in [0.01,0.05).
func (r *RNG) RandomWalkMatrix(num, length int) [][]float64 {
	out := make([][]float64, num)
	for i := range out {
		start := 10 + r.Float64()*190
		vol := 0.01 + r.Float64()*0.04
		out[i] = r.RandomWalkSeries(length, start, vol)
	}
	return out
}

// Noisy returns a copy of seq with Gaussian noise scaled to sigma.
func (r *RNG) Noisy(seq []float64, sigma float64) []float64 {
	out := make([]float64, len(seq))
	for i, v := range seq {
		out[i] = v + r.NormFloat64()*sigma
	}
	return out
}

// Ranked is a brute-force ranking entry.
type Ranked struct {
	ID       uint32
	Distance float64
}

// BruteForceDTW ranks every series in seqs against query by DTW distance over
// z-score normalized sequences and returns the k best, ascending. This is the
// exact ranking a search engine must reproduce when its candidate pool covers
// the whole corpus.
func BruteForceDTW(seqs [][]float64, query []float64, k int) ([]Ranked, error) {
	ext := feature.NewExtractor()
	nq := ext.Normalize(query)

	out := make([]Ranked, 0, len(seqs))
	for i, s := range seqs {
		d, err := dtw.Distance(nq, ext.Normalize(s))
		if err != nil {
			return nil, err
		}
		out = append(out, Ranked{ID: uint32(i), Distance: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
