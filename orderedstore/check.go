package orderedstore

import (
	"github.com/homier/assoc/errcode"
)

// Check walks the whole tree and verifies strict key order, the AVL balance
// and the cached heights. It never fails on a tree modified only through
// the exported API.
func (t *Tree[K, V]) Check() error {
	count := 0
	if _, err := t.check(t.root, nil, nil, &count); err != nil {
		return err
	}

	if count != t.size {
		return errcode.Violation("orderedstore: counted %d nodes, size is %d", count, t.size)
	}

	return nil
}

func (t *Tree[K, V]) check(n *node[K, V], low, high *K, count *int) (int8, error) {
	if n == nil {
		return 0, nil
	}

	*count++

	if low != nil && t.compare(n.key, *low) <= 0 {
		return 0, errcode.Violation("orderedstore: key %v not above its lower neighbour %v", n.key, *low)
	}

	if high != nil && t.compare(n.key, *high) >= 0 {
		return 0, errcode.Violation("orderedstore: key %v not below its upper neighbour %v", n.key, *high)
	}

	lh, err := t.check(n.left, low, &n.key, count)
	if err != nil {
		return 0, err
	}

	rh, err := t.check(n.right, &n.key, high, count)
	if err != nil {
		return 0, err
	}

	if d := lh - rh; d > 1 || d < -1 {
		return 0, errcode.Violation("orderedstore: key %v is out of balance (%d)", n.key, d)
	}

	h := max(lh, rh) + 1
	if h != n.height {
		return 0, errcode.Violation("orderedstore: key %v caches height %d, actual %d", n.key, n.height, h)
	}

	return h, nil
}
