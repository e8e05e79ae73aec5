package hashstore

import (
	"math/bits"
	"unsafe"
)

// Returns the next power of 2 for the given value `v`.
// Zero is treated as one.
func NextPowerOf2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}

	return uint32(1) << min(bits.Len32(v-1), 31)
}

// Estimates capacity (number of slots) from the given memory size in bytes.
func CapacityFromSize[K comparable, V any](size uintptr) int {
	sizeOfGroup := unsafe.Sizeof(group[K, V]{})
	numGroups := size / sizeOfGroup

	return int(numGroups * groupSize)
}

// normalizeCapacity rounds a requested slot count up to a power of two
// holding at least one group.
func normalizeCapacity(capacity int) uintptr {
	if capacity <= groupSize {
		return groupSize
	}

	if uint64(capacity) > 1<<31 {
		return 1 << 31
	}

	return uintptr(NextPowerOf2(uint32(capacity)))
}

// floorCapacity rounds a slot ceiling down to a power of two.
func floorCapacity(capacity int) uintptr {
	if capacity <= groupSize {
		return groupSize
	}

	if uint64(capacity) >= 1<<31 {
		return 1 << 31
	}

	return uintptr(1) << (bits.Len32(uint32(capacity)) - 1)
}
