// Package curvego provides an embedded similarity-search engine for
// fixed-length numeric curves such as price series.
//
// Retrieval is two-staged: a coarse filter ranks compressed feature vectors
// (trend slope, return volatility, downsampled shape) with an exact KD-tree
// k-NN query, then an exact Dynamic-Time-Warping pass reranks the candidate
// pool at full resolution.
//
// # Quick Start
//
//	ctx := context.Background()
//	engine, err := curvego.New(ctx, records,
//	    curvego.WithSequenceLength(20),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	result, err := engine.Search(query).
//	    KNN(3).
//	    Pool(50).
//	    Execute(ctx)
//
// An Engine is immutable once built: any number of concurrent searches may
// run against it without coordination. Refreshing the corpus means building a
// new Engine and swapping it in via a Handle.
package curvego

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/curvego/feature"
	"github.com/hupe1980/curvego/kdtree"
	"github.com/hupe1980/curvego/metadata"
)

// Record is a corpus input record. Series must contain at least the
// configured sequence length L; only the most recent L points are indexed.
type Record struct {
	ID     string
	Name   string
	Series []float64
	Tags   []string
}

// Match is a single search result.
type Match struct {
	ID       string
	Name     string
	Series   []float64
	Distance float64
}

// Result is the outcome of a search: up to k matches ascending by DTW
// distance, the number of candidates skipped during reranking, and the
// measured wall time of the whole operation.
type Result struct {
	Matches []Match
	Skipped int
	Took    time.Duration
}

// entry is one indexed corpus member. The stored series is the most recent L
// points of the input record; norm is its z-score normalization, precomputed
// once since the corpus is immutable.
type entry struct {
	rec  Record
	norm []float64
}

// Engine is a built similarity-search index over a fixed corpus. It is
// immutable after New returns and safe for concurrent use.
type Engine struct {
	opts      options
	extractor *feature.Extractor
	entries   []entry
	tree      *kdtree.Tree
	tags      *metadata.Index
	skipped   int
}

// New builds an engine from records: it windows each series to the most
// recent L points, extracts feature vectors, and constructs the KD-tree.
// Records whose series are shorter than L are excluded, logged, and counted;
// they never fail the build. Building is synchronous and CPU-bound; feature
// extraction runs in parallel bounded by WithBuildParallelism.
func New(ctx context.Context, records []Record, optFns ...Option) (*Engine, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	e := &Engine{
		opts: opts,
		extractor: feature.NewExtractor(func(o *feature.Options) {
			if opts.shapePoints > 0 {
				o.ShapePoints = opts.shapePoints
			}
			if opts.featureScale > 0 {
				o.Scale = opts.featureScale
			}
		}),
		tags: metadata.NewIndex(),
	}

	l := opts.sequenceLength
	e.entries = make([]entry, 0, len(records))
	for _, rec := range records {
		if len(rec.Series) < l {
			opts.logger.WarnContext(ctx, "skipping record",
				"id", rec.ID,
				"length", len(rec.Series),
				"required", l,
			)
			e.skipped++
			continue
		}
		rec.Series = slices.Clone(rec.Series[len(rec.Series)-l:])
		e.entries = append(e.entries, entry{rec: rec})
	}

	features := make([][]float64, len(e.entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.buildWorkers)
	for i := range e.entries {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := e.extractor.Extract(e.entries[i].rec.Series)
			if err != nil {
				// Unreachable for windows of length L >= 2; fail loudly
				// rather than indexing a hole.
				return err
			}
			features[i] = f
			e.entries[i].norm = e.extractor.Normalize(e.entries[i].rec.Series)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		opts.metrics.RecordBuild(0, e.skipped, time.Since(start), err)
		opts.logger.LogBuild(ctx, 0, e.skipped, time.Since(start), err)
		return nil, err
	}

	dim := e.extractor.Dimension()
	for _, f := range features {
		if len(f) != dim {
			err := &ErrDimensionMismatch{Expected: dim, Actual: len(f)}
			opts.metrics.RecordBuild(0, e.skipped, time.Since(start), err)
			return nil, err
		}
	}

	tree, err := kdtree.Build(features)
	if err != nil {
		err = translateError(err)
		opts.metrics.RecordBuild(0, e.skipped, time.Since(start), err)
		opts.logger.LogBuild(ctx, 0, e.skipped, time.Since(start), err)
		return nil, err
	}
	e.tree = tree

	for i, ent := range e.entries {
		if len(ent.rec.Tags) > 0 {
			e.tags.Add(uint32(i), ent.rec.Tags...)
		}
	}

	opts.metrics.RecordBuild(len(e.entries), e.skipped, time.Since(start), nil)
	opts.logger.LogBuild(ctx, len(e.entries), e.skipped, time.Since(start), nil)

	return e, nil
}

// Len returns the number of indexed corpus entries.
func (e *Engine) Len() int { return len(e.entries) }

// SequenceLength returns the fixed corpus sequence length L.
func (e *Engine) SequenceLength() int { return e.opts.sequenceLength }

// Dimension returns the feature vector dimensionality.
func (e *Engine) Dimension() int { return e.extractor.Dimension() }

// SkippedAtBuild returns the number of records excluded during the build.
func (e *Engine) SkippedAtBuild() int { return e.skipped }

// Tags returns the engine's tag index.
func (e *Engine) Tags() *metadata.Index { return e.tags }

// Record returns the indexed record at the given corpus entry ID. The
// returned series is the engine's L-point window and must not be mutated.
func (e *Engine) Record(id uint32) (Record, bool) {
	if int(id) >= len(e.entries) {
		return Record{}, false
	}
	return e.entries[id].rec, true
}

// translateError maps subsystem errors onto the engine's error types.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var dm *kdtree.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, kdtree.ErrInvalidK) {
		return ErrInvalidK
	}
	return err
}

// Handle holds the live engine behind an atomic pointer so a corpus refresh
// can be built off the hot path and swapped in without blocking readers.
type Handle struct {
	ptr atomic.Pointer[Engine]
}

// NewHandle creates a handle serving the given engine.
func NewHandle(e *Engine) *Handle {
	h := &Handle{}
	h.ptr.Store(e)
	return h
}

// Load returns the engine currently serving queries.
func (h *Handle) Load() *Engine { return h.ptr.Load() }

// Swap atomically replaces the serving engine and returns the previous one.
// In-flight searches keep using the engine they started with.
func (h *Handle) Swap(e *Engine) *Engine { return h.ptr.Swap(e) }
