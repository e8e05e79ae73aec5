package assoc

import (
	"cmp"
	"iter"

	"golang.org/x/exp/constraints"
)

// Set is a Map without values. struct{} values take no space in either
// backend.
type Set[K comparable] struct {
	m    *Map[K, struct{}]
	opts []Option[K]
}

// NewSet takes the same options as New.
func NewSet[K comparable](opts ...Option[K]) *Set[K] {
	return &Set[K]{m: New[K, struct{}](opts...), opts: opts}
}

func NewHashSet[K comparable](opts ...Option[K]) *Set[K] {
	return NewSet(append(opts, WithBackend[K](BackendHash))...)
}

func NewOrderedSet[K constraints.Ordered](opts ...Option[K]) *Set[K] {
	opts = append([]Option[K]{WithCompare(cmp.Compare[K])}, opts...)

	return NewSet(append(opts, WithBackend[K](BackendOrdered))...)
}

// sibling is an empty set built like s.
func (s *Set[K]) sibling() *Set[K] {
	return NewSet(s.opts...)
}

func (s *Set[K]) Backend() Backend {
	return s.m.Backend()
}

func (s *Set[K]) Len() int {
	return s.m.Len()
}

// Insert reports errcode.ErrKeyAlreadyPresent for a key already in s.
func (s *Set[K]) Insert(key K) error {
	return s.m.Insert(key, struct{}{})
}

func (s *Set[K]) Has(key K) bool {
	return s.m.Has(key)
}

func (s *Set[K]) Erase(key K) error {
	return s.m.Erase(key)
}

func (s *Set[K]) Clear() {
	s.m.Clear()
}

func (s *Set[K]) All() iter.Seq[K] {
	return s.m.Keys()
}

// Range is Map.Range over keys.
func (s *Set[K]) Range(low, high Bound[K]) (iter.Seq[K], error) {
	seq, err := s.m.Range(low, high)
	if err != nil {
		return nil, err
	}

	return func(yield func(K) bool) {
		for k := range seq {
			if !yield(k) {
				return
			}
		}
	}, nil
}

// Union returns a new set, built like s, holding the keys of both sets.
func (s *Set[K]) Union(other *Set[K]) (*Set[K], error) {
	out := s.sibling()

	for _, src := range [...]*Set[K]{s, other} {
		for k := range src.All() {
			if err := out.m.Assign(k, struct{}{}); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// Intersect returns a new set, built like s, holding the keys present in
// both sets.
func (s *Set[K]) Intersect(other *Set[K]) (*Set[K], error) {
	out := s.sibling()

	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}

	for k := range small.All() {
		if !large.Has(k) {
			continue
		}

		if err := out.Insert(k); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Difference returns a new set, built like s, holding the keys of s that are
// not in other.
func (s *Set[K]) Difference(other *Set[K]) (*Set[K], error) {
	out := s.sibling()

	for k := range s.All() {
		if other.Has(k) {
			continue
		}

		if err := out.Insert(k); err != nil {
			return nil, err
		}
	}

	return out, nil
}
