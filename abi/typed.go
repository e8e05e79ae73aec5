package abi

import (
	"iter"

	"github.com/homier/assoc/errcode"
	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/orderedstore"
)

// Typed drives a Container from generic code. Each call converts its
// arguments to Handles and goes through the erased entry points.
type Typed[K comparable, V any] struct {
	c *Container
}

// NewTyped builds a Container for K and V. compare may be nil for the hash
// backend.
func NewTyped[K comparable, V any](p Params, compare func(a, b K) int) (*Typed[K, V], error) {
	c, code := NewContainer(p, KeyOpsFor(compare), ValueOpsFor[V]())
	if code != errcode.OK {
		return nil, code
	}

	return &Typed[K, V]{c: c}, nil
}

// Container exposes the erased container behind m.
func (m *Typed[K, V]) Container() *Container {
	return m.c
}

func (m *Typed[K, V]) Len() int {
	return m.c.Len()
}

func (m *Typed[K, V]) Insert(key K, value V) error {
	return m.c.Insert(HandleOf(&key), HandleOf(&value)).Err()
}

func (m *Typed[K, V]) Assign(key K, value V) error {
	return m.c.Assign(HandleOf(&key), HandleOf(&value)).Err()
}

func (m *Typed[K, V]) Find(key K) (V, error) {
	var out V
	err := m.c.Find(HandleOf(&key), HandleOf(&out)).Err()

	return out, err
}

func (m *Typed[K, V]) Get(key K) (V, bool) {
	v, err := m.Find(key)
	return v, err == nil
}

func (m *Typed[K, V]) Has(key K) bool {
	return m.c.Contains(HandleOf(&key)) == errcode.OK
}

func (m *Typed[K, V]) Erase(key K) error {
	return m.c.Erase(HandleOf(&key)).Err()
}

func (m *Typed[K, V]) Clear() {
	m.c.Clear()
}

// Close destroys the container; m must not be used afterwards.
func (m *Typed[K, V]) Close() error {
	return m.c.Destroy().Err()
}

func (m *Typed[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.c.Iterate(func(k, v Handle) bool {
			return yield(*(*K)(k.Ptr), *(*V)(v.Ptr))
		})
	}
}

// Stats returns errcode.ErrNotSupported on the ordered backend.
func (m *Typed[K, V]) Stats() (hashstore.Stats, error) {
	s, code := m.c.Stats()
	return s, code.Err()
}

// Range returns errcode.ErrNotSupported on the hash backend.
func (m *Typed[K, V]) Range(low, high orderedstore.Bound[K]) (iter.Seq2[K, V], error) {
	if _, ok := m.c.store.(ranger); !ok {
		return nil, errcode.ErrNotSupported
	}

	var lo, hi Handle
	if k, ok := low.Key(); ok {
		lo = HandleOf(&k)
	}

	if k, ok := high.Key(); ok {
		hi = HandleOf(&k)
	}

	return func(yield func(K, V) bool) {
		m.c.Range(lo, hi, func(k, v Handle) bool {
			return yield(*(*K)(k.Ptr), *(*V)(v.Ptr))
		})
	}, nil
}
