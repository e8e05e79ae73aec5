package orderedstore

import (
	"cmp"
	"reflect"
	"unsafe"
)

// CompareFor derives an order for key types whose underlying kind is an
// integer, a float or a string, named types included. It reports false for
// every other kind.
func CompareFor[K any]() (CompareFunc[K], bool) {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Int:
		return compareAs[K, int](), true
	case reflect.Int8:
		return compareAs[K, int8](), true
	case reflect.Int16:
		return compareAs[K, int16](), true
	case reflect.Int32:
		return compareAs[K, int32](), true
	case reflect.Int64:
		return compareAs[K, int64](), true
	case reflect.Uint:
		return compareAs[K, uint](), true
	case reflect.Uint8:
		return compareAs[K, uint8](), true
	case reflect.Uint16:
		return compareAs[K, uint16](), true
	case reflect.Uint32:
		return compareAs[K, uint32](), true
	case reflect.Uint64:
		return compareAs[K, uint64](), true
	case reflect.Uintptr:
		return compareAs[K, uintptr](), true
	case reflect.Float32:
		return compareAs[K, float32](), true
	case reflect.Float64:
		return compareAs[K, float64](), true
	case reflect.String:
		return compareAs[K, string](), true
	default:
		return nil, false
	}
}

// compareAs reinterprets K as its underlying type U. Only valid when the
// kinds match, which CompareFor guarantees.
func compareAs[K any, U cmp.Ordered]() CompareFunc[K] {
	return func(a, b K) int {
		return cmp.Compare(*(*U)(unsafe.Pointer(&a)), *(*U)(unsafe.Pointer(&b)))
	}
}
