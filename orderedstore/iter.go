package orderedstore

import (
	"iter"

	"github.com/homier/assoc/errcode"
)

// Bound limits one side of a Range. As a lower bound it is inclusive, as an
// upper bound exclusive. The zero Bound is unbounded.
type Bound[K any] struct {
	key     K
	bounded bool
}

func Unbounded[K any]() Bound[K] {
	return Bound[K]{}
}

func At[K any](key K) Bound[K] {
	return Bound[K]{key: key, bounded: true}
}

// Key returns the bound key, false when unbounded.
func (b Bound[K]) Key() (K, bool) {
	return b.key, b.bounded
}

type walker[K, V any] struct {
	t         *Tree[K, V]
	low, high Bound[K]
	yield     func(K, V) bool
	mutations uint64
}

func (w *walker[K, V]) emit(n *node[K, V]) bool {
	if !w.yield(n.key, n.value) {
		return false
	}

	if w.t.mutations != w.mutations {
		errcode.Abort("orderedstore: tree mutated during iteration")
	}

	return true
}

func (w *walker[K, V]) aboveLow(n *node[K, V]) bool {
	return !w.low.bounded || w.t.compare(n.key, w.low.key) >= 0
}

func (w *walker[K, V]) belowHigh(n *node[K, V]) bool {
	return !w.high.bounded || w.t.compare(n.key, w.high.key) < 0
}

func (w *walker[K, V]) ascend(n *node[K, V]) bool {
	if n == nil {
		return true
	}

	above, below := w.aboveLow(n), w.belowHigh(n)

	if above && !w.ascend(n.left) {
		return false
	}

	if above && below && !w.emit(n) {
		return false
	}

	if below {
		return w.ascend(n.right)
	}

	return true
}

func (w *walker[K, V]) descend(n *node[K, V]) bool {
	if n == nil {
		return true
	}

	return w.descend(n.right) && w.emit(n) && w.descend(n.left)
}

// All yields every entry in ascending key order. Inserting or erasing while
// the sequence is running panics with an invariant violation on the next
// step; overwriting values is allowed.
func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return t.Range(Unbounded[K](), Unbounded[K]())
}

// Keys yields every key in ascending order.
func (t *Tree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Backward yields every entry in descending key order.
func (t *Tree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		w := walker[K, V]{t: t, yield: yield, mutations: t.mutations}
		w.descend(t.root)
	}
}

// Range yields the entries with low <= key < high in ascending order.
// An empty or inverted range yields nothing.
func (t *Tree[K, V]) Range(low, high Bound[K]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if low.bounded && high.bounded && t.compare(low.key, high.key) >= 0 {
			return
		}

		w := walker[K, V]{t: t, low: low, high: high, yield: yield, mutations: t.mutations}
		w.ascend(t.root)
	}
}
