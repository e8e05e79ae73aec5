package assoc

import (
	"cmp"
	"iter"
	"reflect"

	"golang.org/x/exp/constraints"

	"github.com/homier/assoc/abi"
	"github.com/homier/assoc/config"
	"github.com/homier/assoc/errcode"
	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/orderedstore"
)

// Bound limits one side of Map.Range: inclusive below, exclusive above.
type Bound[K any] = orderedstore.Bound[K]

func Unbounded[K any]() Bound[K] {
	return orderedstore.Unbounded[K]()
}

func At[K any](key K) Bound[K] {
	return orderedstore.At(key)
}

// Map is a key/value container. Exactly one of its stores is set, chosen at
// construction and never changed.
type Map[K comparable, V any] struct {
	backend Backend

	hash   *hashstore.Table[K, V]
	tree   *orderedstore.Tree[K, V]
	erased *abi.Typed[K, V]
}

// New builds a Map on config.DefaultBackend unless an option selects
// another. It panics when the ordered backend is selected for a key type
// with no ordering given or derivable.
func New[K comparable, V any](opts ...Option[K]) *Map[K, V] {
	s := makeSettings(opts)

	m := &Map[K, V]{backend: s.backend}

	if s.backend == BackendOrdered && s.compare == nil {
		compare, ok := orderedstore.CompareFor[K]()
		if !ok {
			errcode.Abort("assoc: ordered backend needs an ordering for key type %s, use WithCompare", reflect.TypeFor[K]())
		}

		s.compare = compare
	}

	if config.StableABI {
		typed, err := abi.NewTyped[K, V](abi.Params{
			Backend:     s.backend,
			Capacity:    s.capacity,
			MaxCapacity: s.maxCapacity,
		}, s.compare)
		if err != nil {
			errcode.Abort("assoc: building erased container: %v", err)
		}

		m.erased = typed

		return m
	}

	switch s.backend {
	case BackendHash:
		m.hash = hashstore.New(s.capacity, hashOptions[K, V](&s)...)
	case BackendOrdered:
		m.tree = orderedstore.New(s.compare, orderedstore.WithMaxLen[K, V](s.maxCapacity))
	default:
		errcode.Abort("assoc: unknown backend %d", s.backend)
	}

	return m
}

func hashOptions[K comparable, V any](s *settings[K]) []hashstore.Option[K, V] {
	opts := []hashstore.Option[K, V]{
		hashstore.WithMaxLoadFactor[K, V](s.maxLoadFactor),
		hashstore.WithShrinkLoadFactor[K, V](s.shrinkLoadFactor),
	}

	if s.maxCapacity > 0 {
		opts = append(opts, hashstore.WithMaxCapacity[K, V](s.maxCapacity))
	}

	if s.hashFunc != nil {
		opts = append(opts, hashstore.WithHashFunc[K, V](s.hashFunc))
	}

	return opts
}

func NewHash[K comparable, V any](opts ...Option[K]) *Map[K, V] {
	return New[K, V](append(opts, WithBackend[K](BackendHash))...)
}

// NewOrdered builds a Map on the ordered backend using cmp.Compare. A
// WithCompare option overrides the ordering.
func NewOrdered[K constraints.Ordered, V any](opts ...Option[K]) *Map[K, V] {
	opts = append([]Option[K]{WithCompare(cmp.Compare[K])}, opts...)

	return New[K, V](append(opts, WithBackend[K](BackendOrdered))...)
}

func (m *Map[K, V]) Backend() Backend {
	return m.backend
}

func (m *Map[K, V]) Len() int {
	switch {
	case m.erased != nil:
		return m.erased.Len()
	case m.hash != nil:
		return m.hash.Len()
	default:
		return m.tree.Len()
	}
}

// Insert adds key if absent. An existing entry is left untouched and
// errcode.ErrKeyAlreadyPresent is returned.
func (m *Map[K, V]) Insert(key K, value V) error {
	switch {
	case m.erased != nil:
		return m.erased.Insert(key, value)
	case m.hash != nil:
		return m.hash.Insert(key, value)
	default:
		return m.tree.Insert(key, value)
	}
}

// Assign inserts key or overwrites its value.
func (m *Map[K, V]) Assign(key K, value V) error {
	switch {
	case m.erased != nil:
		return m.erased.Assign(key, value)
	case m.hash != nil:
		return m.hash.Assign(key, value)
	default:
		return m.tree.Assign(key, value)
	}
}

// Find reports a missing key as errcode.ErrKeyNotFound.
func (m *Map[K, V]) Find(key K) (V, error) {
	switch {
	case m.erased != nil:
		return m.erased.Find(key)
	case m.hash != nil:
		return m.hash.Find(key)
	default:
		return m.tree.Find(key)
	}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	switch {
	case m.erased != nil:
		return m.erased.Get(key)
	case m.hash != nil:
		return m.hash.Get(key)
	default:
		return m.tree.Get(key)
	}
}

func (m *Map[K, V]) Has(key K) bool {
	switch {
	case m.erased != nil:
		return m.erased.Has(key)
	case m.hash != nil:
		return m.hash.Has(key)
	default:
		return m.tree.Has(key)
	}
}

func (m *Map[K, V]) Erase(key K) error {
	switch {
	case m.erased != nil:
		return m.erased.Erase(key)
	case m.hash != nil:
		return m.hash.Erase(key)
	default:
		return m.tree.Erase(key)
	}
}

func (m *Map[K, V]) Clear() {
	switch {
	case m.erased != nil:
		m.erased.Clear()
	case m.hash != nil:
		m.hash.Reset()
	default:
		m.tree.Clear()
	}
}

// All yields every entry, in ascending key order on the ordered backend and
// in unspecified order on the hash backend. Inserting or erasing during the
// loop panics.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	switch {
	case m.erased != nil:
		return m.erased.All()
	case m.hash != nil:
		return m.hash.All()
	default:
		return m.tree.All()
	}
}

func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Range yields the entries with low <= key < high in ascending order. The
// hash backend keeps no order and returns errcode.ErrNotSupported.
func (m *Map[K, V]) Range(low, high Bound[K]) (iter.Seq2[K, V], error) {
	switch {
	case m.erased != nil:
		return m.erased.Range(low, high)
	case m.hash != nil:
		return nil, errcode.ErrNotSupported
	default:
		return m.tree.Range(low, high), nil
	}
}

// Stats describes the slot array of the hash backend. The ordered backend
// returns errcode.ErrNotSupported.
func (m *Map[K, V]) Stats() (hashstore.Stats, error) {
	switch {
	case m.erased != nil:
		return m.erased.Stats()
	case m.hash != nil:
		return m.hash.Stats(), nil
	default:
		return hashstore.Stats{}, errcode.ErrNotSupported
	}
}
