package abi

import (
	"iter"
	"unsafe"

	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/orderedstore"
)

// store is what a Container needs from a generic store. Values cross it as
// pointers whatever the store keeps in its value slots.
type store interface {
	Len() int
	entry(key erased) (erased, erased, bool)
	insert(key, value erased) error
	erase(key erased) error
	all() iter.Seq2[erased, erased]
	clear()
}

// slot is what a store keeps per value: the pointer to an owned copy, or
// nothing at all when the value type has no size.
type slot interface {
	erased | struct{}
}

var zeroSized struct{}

// zeroValue stands in for every value of a zero-size type.
var zeroValue = unsafe.Pointer(&zeroSized)

func fromSlot[S slot](s S) erased {
	if p, ok := any(s).(erased); ok {
		return p
	}

	return zeroValue
}

func toSlot[S slot](p erased) S {
	var s S
	if ps, ok := any(&s).(*erased); ok {
		*ps = p
	}

	return s
}

func slots[S slot](seq iter.Seq2[erased, S]) iter.Seq2[erased, erased] {
	return func(yield func(erased, erased) bool) {
		for k, s := range seq {
			if !yield(k, fromSlot(s)) {
				return
			}
		}
	}
}

type hashStore[S slot] struct {
	t *hashstore.Table[erased, S]
}

func (s hashStore[S]) Len() int {
	return s.t.Len()
}

func (s hashStore[S]) entry(key erased) (erased, erased, bool) {
	k, v, ok := s.t.Entry(key)
	return k, fromSlot(v), ok
}

func (s hashStore[S]) insert(key, value erased) error {
	return s.t.Insert(key, toSlot[S](value))
}

func (s hashStore[S]) erase(key erased) error {
	return s.t.Erase(key)
}

func (s hashStore[S]) all() iter.Seq2[erased, erased] {
	return slots(s.t.All())
}

func (s hashStore[S]) clear() {
	s.t.Reset()
}

func (s hashStore[S]) stats() hashstore.Stats {
	return s.t.Stats()
}

type treeStore[S slot] struct {
	t *orderedstore.Tree[erased, S]
}

func (s treeStore[S]) Len() int {
	return s.t.Len()
}

func (s treeStore[S]) entry(key erased) (erased, erased, bool) {
	k, v, ok := s.t.Entry(key)
	return k, fromSlot(v), ok
}

func (s treeStore[S]) insert(key, value erased) error {
	return s.t.Insert(key, toSlot[S](value))
}

func (s treeStore[S]) erase(key erased) error {
	return s.t.Erase(key)
}

func (s treeStore[S]) all() iter.Seq2[erased, erased] {
	return slots(s.t.All())
}

func (s treeStore[S]) clear() {
	s.t.Clear()
}

func (s treeStore[S]) rangeOver(low, high orderedstore.Bound[erased]) iter.Seq2[erased, erased] {
	return slots(s.t.Range(low, high))
}

// ranger is implemented by the ordered stores.
type ranger interface {
	rangeOver(low, high orderedstore.Bound[erased]) iter.Seq2[erased, erased]
}

type statser interface {
	stats() hashstore.Stats
}

func newHashStore[S slot](p Params, keys *KeyOps) store {
	opts := []hashstore.Option[erased, S]{
		hashstore.WithHashFunc[erased, S](keys.Hash),
		hashstore.WithEqualFunc[erased, S](keys.Equal),
	}
	if p.MaxCapacity > 0 {
		opts = append(opts, hashstore.WithMaxCapacity[erased, S](p.MaxCapacity))
	}

	return hashStore[S]{t: hashstore.New[erased, S](p.Capacity, opts...)}
}

func newTreeStore[S slot](p Params, keys *KeyOps) store {
	return treeStore[S]{t: orderedstore.New[erased, S](keys.Compare, orderedstore.WithMaxLen[erased, S](p.MaxCapacity))}
}
