// Package feature turns raw price curves into the fixed-dimensional
// descriptors used for coarse filtering. A descriptor concatenates the trend
// slope, the return volatility, and a coarse shape sample of the normalized
// curve, with the scalar components scaled up to balance their magnitude
// against the shape block under Euclidean comparison.
package feature

import (
	"errors"
	"math"
)

const (
	// DefaultShapePoints is the number of shape samples in a descriptor.
	DefaultShapePoints = 8

	// DefaultScale balances slope and volatility against the shape samples.
	DefaultScale = 100

	// epsilon guards divisions against constant sequences and zero prices.
	epsilon = 1e-8
)

// ErrSequenceTooShort is returned when a sequence has fewer than 2 points.
var ErrSequenceTooShort = errors.New("feature: sequence must contain at least 2 points")

// Options contains configuration options for the extractor.
type Options struct {
	// ShapePoints is the number of evenly spaced shape samples. Must be > 0.
	ShapePoints int

	// Scale multiplies the slope and volatility components.
	Scale float64
}

// DefaultOptions contains the default configuration options for the extractor.
var DefaultOptions = Options{
	ShapePoints: DefaultShapePoints,
	Scale:       DefaultScale,
}

// Extractor derives feature vectors from raw sequences. It is stateless and
// safe for concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor creates a new extractor.
func NewExtractor(optFns ...func(o *Options)) *Extractor {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ShapePoints <= 0 {
		opts.ShapePoints = DefaultShapePoints
	}
	return &Extractor{opts: opts}
}

// Dimension returns the length of the vectors produced by Extract.
func (e *Extractor) Dimension() int {
	return 2 + e.opts.ShapePoints
}

// Normalize returns a z-score normalized copy of seq. The standard deviation
// denominator carries an epsilon so constant sequences map to zeros instead
// of dividing by zero.
func (e *Extractor) Normalize(seq []float64) []float64 {
	if len(seq) == 0 {
		return nil
	}
	var mean float64
	for _, v := range seq {
		mean += v
	}
	mean /= float64(len(seq))

	var variance float64
	for _, v := range seq {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(seq)))

	out := make([]float64, len(seq))
	for i, v := range seq {
		out[i] = (v - mean) / (std + epsilon)
	}
	return out
}

// Extract computes the feature vector for seq:
// [slope*scale, volatility*scale, shape_0 .. shape_{P-1}].
//
// The slope is a least-squares linear fit of the normalized sequence against
// its index positions. The volatility is the standard deviation of
// period-over-period returns of the raw sequence. The shape block samples the
// normalized sequence at evenly spaced index positions.
func (e *Extractor) Extract(seq []float64) ([]float64, error) {
	if len(seq) < 2 {
		return nil, ErrSequenceTooShort
	}

	norm := e.Normalize(seq)

	// Trend: least-squares slope over x = 0..n-1.
	n := float64(len(norm))
	xMean := (n - 1) / 2
	var yMean float64
	for _, v := range norm {
		yMean += v
	}
	yMean /= n
	var num, den float64
	for i, v := range norm {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	slope := num / den

	// Volatility: stddev of relative period-over-period changes of the raw
	// sequence. Zero prices are guarded by epsilon.
	returns := make([]float64, len(seq)-1)
	var rMean float64
	for i := 1; i < len(seq); i++ {
		r := (seq[i] - seq[i-1]) / (seq[i-1] + epsilon)
		returns[i-1] = r
		rMean += r
	}
	rMean /= float64(len(returns))
	var rVar float64
	for _, r := range returns {
		d := r - rMean
		rVar += d * d
	}
	volatility := math.Sqrt(rVar / float64(len(returns)))

	out := make([]float64, 0, e.Dimension())
	out = append(out, slope*e.opts.Scale, volatility*e.opts.Scale)

	// Shape: nearest-index samples at evenly spaced positions.
	p := e.opts.ShapePoints
	for i := 0; i < p; i++ {
		pos := 0
		if p > 1 {
			pos = int(float64(i) * float64(len(norm)-1) / float64(p-1))
		}
		out = append(out, norm[pos])
	}

	return out, nil
}

// Resample maps seq onto n evenly spaced points over its own domain using
// linear interpolation. The result is always a fresh slice; when
// len(seq) == n the output equals the input element for element, so
// resampling is idempotent.
func Resample(seq []float64, n int) []float64 {
	out := make([]float64, n)
	if len(seq) == 0 || n == 0 {
		return out
	}
	if len(seq) == 1 || n == 1 {
		for i := range out {
			out[i] = seq[0]
		}
		return out
	}

	step := float64(len(seq)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= len(seq)-1 {
			out[i] = seq[len(seq)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = seq[lo]*(1-frac) + seq[lo+1]*frac
	}
	return out
}
