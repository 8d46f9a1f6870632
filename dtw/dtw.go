// Package dtw implements Dynamic Time Warping, the elastic distance used to
// rerank candidate curves.
//
// DTW aligns two sequences that may be stretched or compressed in time by
// finding the cheapest warping path through a cost table:
//
//	D[0][0] = 0
//	D[i][0] = D[0][j] = +Inf   for i,j > 0
//	D[i][j] = |a[i-1]-b[j-1]| + min(D[i-1][j], D[i][j-1], D[i-1][j-1])
//
// The distance is D[n][m]. Only two rows of the table are kept, so memory is
// O(min over the second sequence) while time stays O(n*m). No banding is
// applied: sequences are tens of points long and DTW only runs on the bounded
// candidate pool, never the whole corpus.
//
// DTW is symmetric and zero on identical inputs, but it is not a true metric:
// the triangle inequality does not hold.
package dtw

import (
	"errors"
	"math"
)

// ErrEmptySequence indicates one or both inputs are empty.
var ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

// Distance computes the Dynamic Time Warping distance between a and b.
// The inputs may have different lengths.
func Distance(a, b []float64) (float64, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, ErrEmptySequence
	}

	inf := math.Inf(1)
	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = inf
	}

	for i := 1; i <= n; i++ {
		curr[0] = inf
		for j := 1; j <= m; j++ {
			cost := math.Abs(a[i-1] - b[j-1])
			best := prev[j-1]
			if prev[j] < best {
				best = prev[j]
			}
			if curr[j-1] < best {
				best = curr[j-1]
			}
			curr[j] = cost + best
		}
		prev, curr = curr, prev
	}

	return prev[m], nil
}
