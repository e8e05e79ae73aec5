package abi

import (
	"hash/maphash"
	"unsafe"
)

// KeyOps describes a key type. Hash and Equal are required by the hash
// backend, Compare by the ordered backend. Construct returns an owned copy
// of the key behind src; Destroy releases what the copy references.
type KeyOps struct {
	Size  uintptr
	Align uintptr

	Hash      func(key unsafe.Pointer) uint64
	Equal     func(a, b unsafe.Pointer) bool
	Compare   func(a, b unsafe.Pointer) int
	Construct func(src unsafe.Pointer) unsafe.Pointer
	Destroy   func(p unsafe.Pointer)
}

// ValueOps describes a value type. Assign copies src over dst.
type ValueOps struct {
	Size  uintptr
	Align uintptr

	Construct func(src unsafe.Pointer) unsafe.Pointer
	Assign    func(dst, src unsafe.Pointer)
	Destroy   func(p unsafe.Pointer)
}

// KeyOpsFor builds the op table of a Go key type. compare may be nil when
// the table is only used with the hash backend.
func KeyOpsFor[K comparable](compare func(a, b K) int) *KeyOps {
	var zero K
	seed := maphash.MakeSeed()

	ops := &KeyOps{
		Size:  unsafe.Sizeof(zero),
		Align: unsafe.Alignof(zero),
		Hash: func(key unsafe.Pointer) uint64 {
			return maphash.Comparable(seed, *(*K)(key))
		},
		Equal: func(a, b unsafe.Pointer) bool {
			return *(*K)(a) == *(*K)(b)
		},
		Construct: construct[K],
		Destroy:   destroy[K],
	}

	if compare != nil {
		ops.Compare = func(a, b unsafe.Pointer) int {
			return compare(*(*K)(a), *(*K)(b))
		}
	}

	return ops
}

func ValueOpsFor[V any]() *ValueOps {
	var zero V

	return &ValueOps{
		Size:      unsafe.Sizeof(zero),
		Align:     unsafe.Alignof(zero),
		Construct: construct[V],
		Assign: func(dst, src unsafe.Pointer) {
			*(*V)(dst) = *(*V)(src)
		},
		Destroy: destroy[V],
	}
}

func construct[T any](src unsafe.Pointer) unsafe.Pointer {
	p := new(T)
	*p = *(*T)(src)

	return unsafe.Pointer(p)
}

func destroy[T any](p unsafe.Pointer) {
	var zero T
	*(*T)(p) = zero
}
