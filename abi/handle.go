package abi

import "unsafe"

// Handle is a borrowed reference to a key or value of a type the Container
// does not know. Size and Align must match the op table of the side it is
// passed to.
type Handle struct {
	Ptr   unsafe.Pointer
	Size  uintptr
	Align uintptr
}

func HandleOf[T any](v *T) Handle {
	return Handle{
		Ptr:   unsafe.Pointer(v),
		Size:  unsafe.Sizeof(*v),
		Align: unsafe.Alignof(*v),
	}
}

func (h Handle) matches(size, align uintptr) bool {
	return h.Ptr != nil && h.Size == size && h.Align == align
}
