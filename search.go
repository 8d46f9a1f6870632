package curvego

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/curvego/dtw"
	"github.com/hupe1980/curvego/feature"
	"github.com/hupe1980/curvego/kdtree"
)

// SearchOptions controls a single search.
type SearchOptions struct {
	// K is the number of matches to return. Defaults to the engine's
	// configured default (3).
	K int

	// PoolSize is the KD-tree candidate pool reranked by DTW. Defaults to
	// the engine's configured default (50). Values below K are raised to K.
	PoolSize int

	// Filter restricts candidates to corpus entry IDs for which it
	// returns true.
	Filter func(id uint32) bool
}

// Search creates a new fluent search builder for the given query sequence.
//
// Example:
//
//	result, err := engine.Search(query).
//	    KNN(3).
//	    Pool(100).
//	    WhereTag("tech").
//	    Execute(ctx)
func (e *Engine) Search(query []float64) *SearchBuilder {
	return &SearchBuilder{engine: e, query: query}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	engine *Engine
	query  []float64
	k      int
	pool   int
	filter func(id uint32) bool
	tags   []string
}

// KNN sets the number of matches to return.
func (sb *SearchBuilder) KNN(k int) *SearchBuilder {
	sb.k = k
	return sb
}

// Pool sets the candidate pool size for the coarse filter stage.
func (sb *SearchBuilder) Pool(n int) *SearchBuilder {
	sb.pool = n
	return sb
}

// Filter sets an accept filter over corpus entry IDs.
func (sb *SearchBuilder) Filter(fn func(id uint32) bool) *SearchBuilder {
	sb.filter = fn
	return sb
}

// WhereTag restricts candidates to entries carrying any of the given tags.
func (sb *SearchBuilder) WhereTag(tags ...string) *SearchBuilder {
	sb.tags = append(sb.tags, tags...)
	return sb
}

// Execute runs the search and returns the result.
func (sb *SearchBuilder) Execute(ctx context.Context) (*Result, error) {
	return sb.engine.KNNSearch(ctx, sb.query, func(o *SearchOptions) {
		if sb.k > 0 {
			o.K = sb.k
		}
		if sb.pool > 0 {
			o.PoolSize = sb.pool
		}
		switch {
		case sb.filter != nil:
			o.Filter = sb.filter
		case len(sb.tags) > 0:
			o.Filter = sb.engine.tags.Accept(sb.tags...)
		}
	})
}

// First returns only the nearest match, or ErrNotFound if there is none.
func (sb *SearchBuilder) First(ctx context.Context) (Match, error) {
	sb.k = 1
	result, err := sb.Execute(ctx)
	if err != nil {
		return Match{}, err
	}
	if len(result.Matches) == 0 {
		return Match{}, ErrNotFound
	}
	return result.Matches[0], nil
}

// KNNSearch performs a two-stage similarity search: the query is resampled to
// the corpus sequence length if needed, its feature vector selects a
// candidate pool from the KD-tree, and the pool is reranked by exact DTW
// distance over normalized sequences.
//
// A failure on an individual candidate does not abort the search; the
// candidate is skipped and counted in Result.Skipped.
func (e *Engine) KNNSearch(ctx context.Context, query []float64, optFns ...func(o *SearchOptions)) (result *Result, err error) {
	if err := e.opts.controller.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.opts.controller.Release()

	start := time.Now()
	opts := SearchOptions{
		K:        e.opts.defaultK,
		PoolSize: e.opts.defaultPool,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	defer func() {
		took := time.Since(start)
		e.opts.metrics.RecordSearch(opts.K, took, err)
		results, skipped := 0, 0
		if result != nil {
			results, skipped = len(result.Matches), result.Skipped
		}
		e.opts.logger.LogSearch(ctx, opts.K, opts.PoolSize, results, skipped, took, err)
	}()

	if opts.K <= 0 {
		return nil, ErrInvalidK
	}
	if opts.PoolSize < opts.K {
		opts.PoolSize = opts.K
	}
	if len(query) < 2 {
		return nil, ErrInvalidQuery
	}

	if e.tree.Len() == 0 {
		return &Result{Took: time.Since(start)}, nil
	}

	q := query
	if len(q) != e.opts.sequenceLength {
		q = feature.Resample(q, e.opts.sequenceLength)
	}

	qf, ferr := e.extractor.Extract(q)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, ferr)
	}
	normQuery := e.extractor.Normalize(q)

	candidates, kerr := e.tree.KNN(qf, opts.PoolSize, func(o *kdtree.SearchOptions) {
		o.Filter = opts.Filter
	})
	if kerr != nil {
		return nil, translateError(kerr)
	}

	type ranked struct {
		id       uint32
		distance float64
	}
	reranked := make([]ranked, 0, len(candidates))
	skipped := 0
	for _, cand := range candidates {
		d, derr := dtw.Distance(normQuery, e.entries[cand.ID].norm)
		if derr != nil {
			skipped++
			continue
		}
		reranked = append(reranked, ranked{id: cand.ID, distance: d})
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].distance < reranked[j].distance
	})
	if len(reranked) > opts.K {
		reranked = reranked[:opts.K]
	}

	matches := make([]Match, len(reranked))
	for i, r := range reranked {
		rec := e.entries[r.id].rec
		matches[i] = Match{
			ID:       rec.ID,
			Name:     rec.Name,
			Series:   rec.Series,
			Distance: r.distance,
		}
	}

	return &Result{
		Matches: matches,
		Skipped: skipped,
		Took:    time.Since(start),
	}, nil
}
