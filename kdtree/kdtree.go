// Package kdtree implements an arena-backed KD-tree for exact k-nearest
// neighbor search over feature vectors.
//
// Nodes live in a single slice and reference their children by index, so the
// tree has no pointer cycles and a single owner. The tree is built once and
// never mutated; rebuilding means constructing a new Tree. All read
// operations are safe for concurrent use.
package kdtree

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/curvego/distance"
	"github.com/hupe1980/curvego/queue"
)

// none marks an absent child link.
const none = int32(-1)

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("kdtree: k must be positive")

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("kdtree: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Neighbor is a single k-NN result.
type Neighbor struct {
	// ID is the index of the matched point in the build input.
	ID uint32

	// Distance is the Euclidean distance between the query and the point.
	Distance float64
}

// node references one point by index, the split axis for its depth, and its
// children within the arena.
type node struct {
	point uint32
	axis  int
	left  int32
	right int32
}

// Tree is an immutable KD-tree over a fixed point set.
type Tree struct {
	dim    int
	points [][]float64
	nodes  []node
	root   int32
}

// SearchOptions contains the configuration options for a KNN query.
type SearchOptions struct {
	// Filter restricts results to points for which it returns true.
	// Filtered points still guide traversal but are never reported.
	Filter func(id uint32) bool
}

// Build constructs a KD-tree over points. The point slices are referenced,
// not copied; callers must not mutate them afterwards. An empty input yields
// an empty tree, which is valid and returns no neighbors.
//
// Partitioning is by the median along axis depth%D with a stable sort as the
// tie-break, so building is deterministic.
func Build(points [][]float64) (*Tree, error) {
	t := &Tree{points: points, root: none}
	if len(points) == 0 {
		return t, nil
	}

	t.dim = len(points[0])
	if t.dim == 0 {
		return nil, &ErrDimensionMismatch{Expected: 1, Actual: 0}
	}
	for _, p := range points {
		if len(p) != t.dim {
			return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: len(p)}
		}
	}

	ids := make([]uint32, len(points))
	for i := range ids {
		ids[i] = uint32(i)
	}
	t.nodes = make([]node, 0, len(points))
	t.root = t.build(ids, 0)

	return t, nil
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return len(t.points) }

// Dimension returns the point dimensionality, or 0 for an empty tree.
func (t *Tree) Dimension() int { return t.dim }

func (t *Tree) build(ids []uint32, depth int) int32 {
	if len(ids) == 0 {
		return none
	}

	axis := depth % t.dim
	slices.SortStableFunc(ids, func(a, b uint32) int {
		return cmp.Compare(t.points[a][axis], t.points[b][axis])
	})
	median := len(ids) / 2

	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{point: ids[median], axis: axis, left: none, right: none})

	// Children are appended during recursion; link them afterwards.
	left := t.build(ids[:median], depth+1)
	right := t.build(ids[median+1:], depth+1)
	t.nodes[id].left = left
	t.nodes[id].right = right

	return id
}

// KNN returns the k points nearest to target under Euclidean distance,
// sorted ascending. If k exceeds the number of points, all points are
// returned. The search is exact: the branch on the far side of a splitting
// hyperplane is only skipped when it provably cannot hold a better neighbor.
func (t *Tree) KNN(target []float64, k int, optFns ...func(o *SearchOptions)) ([]Neighbor, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if t.root == none {
		return nil, nil
	}
	if len(target) != t.dim {
		return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: len(target)}
	}

	var opts SearchOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if k > len(t.points) {
		k = len(t.points)
	}

	// Max-queue of the k best so far; its top is the current worst kept
	// distance and drives the pruning bound.
	best := queue.NewMax(k)
	t.search(t.root, target, k, best, opts.Filter)

	out := make([]Neighbor, best.Len())
	for i := best.Len() - 1; i >= 0; i-- {
		item, _ := best.Pop()
		out[i] = Neighbor{ID: item.ID, Distance: item.Distance}
	}
	return out, nil
}

func (t *Tree) search(ni int32, target []float64, k int, best *queue.Queue, filter func(id uint32) bool) {
	if ni == none {
		return
	}
	n := &t.nodes[ni]
	p := t.points[n.point]

	if filter == nil || filter(n.point) {
		best.PushBounded(queue.Item{ID: n.point, Distance: distance.Euclidean(target, p)}, k)
	}

	diff := target[n.axis] - p[n.axis]
	near, far := n.left, n.right
	if diff >= 0 {
		near, far = n.right, n.left
	}

	t.search(near, target, k, best, filter)

	// Visit the far branch only if the result set is short of k entries or
	// the splitting hyperplane is closer than the worst kept distance.
	if best.Len() < k {
		t.search(far, target, k, best, filter)
		return
	}
	if worst, ok := best.Top(); ok && math.Abs(diff) < worst.Distance {
		t.search(far, target, k, best, filter)
	}
}
