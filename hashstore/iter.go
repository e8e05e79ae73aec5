package hashstore

import (
	"iter"

	"github.com/homier/assoc/errcode"
)

// All yields every entry in unspecified order. The order changes across
// rehashes. Inserting or erasing while the sequence is running panics with
// an invariant violation on the next step; overwriting values is allowed.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		groups := t.groups
		mutations := t.mutations

		for i := range groups {
			g := &groups[i]
			full := matchFull(g.ctrlWord())

			for full != 0 {
				idx := full.first()
				if !yield(g.slots[idx], g.values[idx]) {
					return
				}

				if t.mutations != mutations {
					errcode.Abort("hashstore: table mutated during iteration")
				}

				full = full.removeFirst()
			}
		}
	}
}

// Keys yields every key in unspecified order, see All.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}
