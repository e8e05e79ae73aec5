package hashstore

import "hash/maphash"

// HashFunc must be deterministic for the lifetime of a table and consistent
// with the table's equality.
type HashFunc[K comparable] func(K) uint64

// EqualFunc replaces == for keys whose identity is not their Go value, such
// as the erased pointers of package abi.
type EqualFunc[K comparable] func(a, b K) bool

func MakeDefaultHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// HashSplit returns the probe position (h1, upper 57 bits) and the control
// byte fragment (h2, lower 7 bits) of a hash.
func HashSplit(hash uint64) (uintptr, uint8) {
	h1 := uintptr(hash >> 7)
	h2 := uint8(hash & 0x7F)

	return h1, h2
}
