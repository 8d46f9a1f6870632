// Package queue implements the bounded priority queues used during
// nearest-neighbor search. Storage is value-based for cache locality and
// zero allocations on the hot path.
package queue

// Item represents an item in the priority queue.
type Item struct {
	ID       uint32  // ID identifies the corpus entry.
	Distance float64 // Distance is the priority of the item in the queue.
}

// Queue is a binary heap of Items ordered by Distance.
type Queue struct {
	isMaxHeap bool
	items     []Item
}

// NewMin initializes a new priority queue with minimum priority on top.
func NewMin(capacity int) *Queue {
	return &Queue{isMaxHeap: false, items: make([]Item, 0, capacity)}
}

// NewMax initializes a new priority queue with maximum priority on top.
func NewMax(capacity int) *Queue {
	return &Queue{isMaxHeap: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of elements in the priority queue.
func (q *Queue) Len() int { return len(q.items) }

// Top returns the top element without removing it.
func (q *Queue) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (q *Queue) Push(item Item) {
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the top element while maintaining the heap invariant.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

// PushBounded keeps at most k items in the queue. For a max-queue this
// retains the k smallest distances seen so far: when full, the current worst
// element is evicted only for a strictly better candidate. It reports whether
// the item was admitted.
func (q *Queue) PushBounded(item Item, k int) bool {
	if len(q.items) < k {
		q.Push(item)
		return true
	}
	top, _ := q.Top()
	if q.isMaxHeap && item.Distance < top.Distance {
		q.Pop()
		q.Push(item)
		return true
	}
	if !q.isMaxHeap && item.Distance > top.Distance {
		q.Pop()
		q.Push(item)
		return true
	}
	return false
}

// Reset clears the priority queue for reuse.
func (q *Queue) Reset() {
	q.items = q.items[:0]
}

func (q *Queue) less(i, j int) bool {
	if q.isMaxHeap {
		return q.items[i].Distance > q.items[j].Distance
	}
	return q.items[i].Distance < q.items[j].Distance
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
