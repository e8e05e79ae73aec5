package assoc

import (
	"github.com/homier/assoc/config"
	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/orderedstore"
)

type Backend = config.Backend

const (
	BackendHash    = config.BackendHash
	BackendOrdered = config.BackendOrdered
)

type settings[K comparable] struct {
	backend          Backend
	capacity         int
	maxCapacity      int
	maxLoadFactor    float64
	shrinkLoadFactor float64

	hashFunc hashstore.HashFunc[K]
	compare  orderedstore.CompareFunc[K]
}

type Option[K comparable] func(s *settings[K])

func WithBackend[K comparable](b Backend) Option[K] {
	return func(s *settings[K]) {
		s.backend = b
	}
}

// Capacity to reserve up front. The ordered backend ignores it.
func WithCapacity[K comparable](n int) Option[K] {
	return func(s *settings[K]) {
		s.capacity = n
	}
}

// Ceiling in slots for the hash backend and in entries for the ordered
// backend. Inserts beyond it report errcode.ErrCapacityExhausted.
func WithMaxCapacity[K comparable](n int) Option[K] {
	return func(s *settings[K]) {
		s.maxCapacity = n
	}
}

// Hash function for the hash backend. Not used in stable ABI builds.
func WithHashFunc[K comparable](f hashstore.HashFunc[K]) Option[K] {
	return func(s *settings[K]) {
		s.hashFunc = f
	}
}

// Ordering for the ordered backend, required for key kinds other than
// integers, floats and strings.
func WithCompare[K comparable](f func(a, b K) int) Option[K] {
	return func(s *settings[K]) {
		s.compare = f
	}
}

// WithConfig applies a validated runtime configuration. Options given after
// it override its fields.
func WithConfig[K comparable](cfg *config.Config) Option[K] {
	return func(s *settings[K]) {
		s.backend = cfg.ResolvedBackend()
		s.capacity = cfg.InitialCapacity
		s.maxCapacity = cfg.MaxCapacity
		s.maxLoadFactor = cfg.MaxLoadFactor
		s.shrinkLoadFactor = cfg.ShrinkLoadFactor
	}
}

func makeSettings[K comparable](opts []Option[K]) settings[K] {
	s := settings[K]{
		backend:          config.DefaultBackend,
		maxLoadFactor:    config.DefaultMaxLoadFactor,
		shrinkLoadFactor: config.DefaultShrinkLoadFactor,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}
