package orderedstore

import (
	"cmp"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/homier/assoc/errcode"
)

// CompareFunc is a total order: negative when a < b, zero when equal,
// positive when a > b.
type CompareFunc[K any] func(a, b K) int

type node[K, V any] struct {
	key   K
	value V

	left  *node[K, V]
	right *node[K, V]

	// height of the subtree rooted here, a leaf has height 1.
	height int8
}

// Tree is an AVL tree. Sibling subtrees differ in height by at most one, so
// the height stays below 1.45*log2(n+2). All operations are O(log n) and
// rebalancing finishes inside the call that triggered it.
//
// A Tree is NOT goroutine-safe.
type Tree[K, V any] struct {
	root    *node[K, V]
	size    int
	maxLen  int
	compare CompareFunc[K]

	// mutations counts structural changes; iterators compare it to fail fast.
	mutations uint64
}

type Option[K, V any] func(t *Tree[K, V])

// Inserts beyond n entries report errcode.ErrCapacityExhausted.
// Zero means unlimited.
func WithMaxLen[K, V any](n int) Option[K, V] {
	return func(t *Tree[K, V]) {
		t.maxLen = max(n, 0)
	}
}

func New[K, V any](compare CompareFunc[K], opts ...Option[K, V]) *Tree[K, V] {
	if compare == nil {
		errcode.Abort("orderedstore: nil compare function")
	}

	t := &Tree[K, V]{compare: compare}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NewOrdered orders keys with cmp.Compare.
func NewOrdered[K constraints.Ordered, V any](opts ...Option[K, V]) *Tree[K, V] {
	return New(cmp.Compare[K], opts...)
}

func (t *Tree[K, V]) Len() int {
	return t.size
}

// Height returns the number of levels, zero for an empty tree.
func (t *Tree[K, V]) Height() int {
	return int(height(t.root))
}

func (t *Tree[K, V]) lookup(key K) *node[K, V] {
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}

	return nil
}

func (t *Tree[K, V]) Get(key K) (V, bool) {
	if n := t.lookup(key); n != nil {
		return n.value, true
	}

	var zero V
	return zero, false
}

// Find is Get reporting a miss as errcode.ErrKeyNotFound.
func (t *Tree[K, V]) Find(key K) (V, error) {
	v, ok := t.Get(key)
	if !ok {
		return v, errcode.ErrKeyNotFound
	}

	return v, nil
}

func (t *Tree[K, V]) Has(key K) bool {
	return t.lookup(key) != nil
}

// Entry returns the stored key along with its value.
func (t *Tree[K, V]) Entry(key K) (K, V, bool) {
	if n := t.lookup(key); n != nil {
		return n.key, n.value, true
	}

	var (
		zeroK K
		zeroV V
	)

	return zeroK, zeroV, false
}

// Insert adds key if absent. An existing entry is left untouched and
// errcode.ErrKeyAlreadyPresent is returned.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if n := t.lookup(key); n != nil {
		return errcode.ErrKeyAlreadyPresent
	}

	if err := t.checkRoom(); err != nil {
		return err
	}

	t.root = t.insert(t.root, key, value)
	t.size++
	t.mutations++

	return nil
}

// Assign inserts key or overwrites its value. Overwriting is not a
// structural change and does not invalidate iterators.
func (t *Tree[K, V]) Assign(key K, value V) error {
	if n := t.lookup(key); n != nil {
		n.value = value
		return nil
	}

	if err := t.checkRoom(); err != nil {
		return err
	}

	t.root = t.insert(t.root, key, value)
	t.size++
	t.mutations++

	return nil
}

func (t *Tree[K, V]) checkRoom() error {
	if t.maxLen > 0 && t.size >= t.maxLen {
		return errors.Wrapf(errcode.ErrCapacityExhausted, "orderedstore: tree is limited to %d entries", t.maxLen)
	}

	return nil
}

// insert places a key known to be absent.
func (t *Tree[K, V]) insert(n *node[K, V], key K, value V) *node[K, V] {
	if n == nil {
		return &node[K, V]{key: key, value: value, height: 1}
	}

	if t.compare(key, n.key) < 0 {
		n.left = t.insert(n.left, key, value)
	} else {
		n.right = t.insert(n.right, key, value)
	}

	return rebalance(n)
}

// Erase removes key. A miss returns errcode.ErrKeyNotFound and changes
// nothing.
func (t *Tree[K, V]) Erase(key K) error {
	if t.lookup(key) == nil {
		return errcode.ErrKeyNotFound
	}

	t.root = t.erase(t.root, key)
	t.size--
	t.mutations++

	return nil
}

// erase removes a key known to be present.
func (t *Tree[K, V]) erase(n *node[K, V], key K) *node[K, V] {
	if n == nil {
		errcode.Abort("orderedstore: key vanished during erase")
	}

	c := t.compare(key, n.key)
	switch {
	case c < 0:
		n.left = t.erase(n.left, key)
	case c > 0:
		n.right = t.erase(n.right, key)
	default:
		if n.left == nil {
			return n.right
		}

		if n.right == nil {
			return n.left
		}

		// Two children: the in-order successor takes this node's place.
		right, successor := removeMin(n.right)
		successor.left = n.left
		successor.right = right
		n.left, n.right = nil, nil
		n = successor
	}

	return rebalance(n)
}

func removeMin[K, V any](n *node[K, V]) (*node[K, V], *node[K, V]) {
	if n.left == nil {
		right := n.right
		n.right = nil

		return right, n
	}

	var least *node[K, V]
	n.left, least = removeMin(n.left)

	return rebalance(n), least
}

// Clear drops every entry.
func (t *Tree[K, V]) Clear() {
	t.root = nil
	t.size = 0
	t.mutations++
}

func (t *Tree[K, V]) Min() (K, V, bool) {
	n := t.root
	for n != nil && n.left != nil {
		n = n.left
	}

	return entryOf(n)
}

func (t *Tree[K, V]) Max() (K, V, bool) {
	n := t.root
	for n != nil && n.right != nil {
		n = n.right
	}

	return entryOf(n)
}

func entryOf[K, V any](n *node[K, V]) (K, V, bool) {
	if n == nil {
		var (
			zeroK K
			zeroV V
		)

		return zeroK, zeroV, false
	}

	return n.key, n.value, true
}
