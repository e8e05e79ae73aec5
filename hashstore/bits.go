package hashstore

import (
	"math/bits"
)

const (
	bitsetLSB = 0x0101010101010101
	bitsetMSB = 0x8080808080808080
)

// bitset is the result of matching a whole group of control bytes at once.
//
// Every byte is either 0x80 (slot matched) or 0x00, and byte i of the word
// corresponds to slot i of the group.
type bitset uint64

// first returns the index of the lowest matched slot, groupSize if none.
func (b bitset) first() uintptr {
	return uintptr(bits.TrailingZeros64(uint64(b)) >> 3)
}

// removeFirst clears the lowest matched slot.
func (b bitset) removeFirst() bitset {
	return b & (b - 1)
}

// matchH2 may report false positives on bytes that follow a true match (the
// borrow propagates), so callers always compare the key afterwards. Empty and
// deleted bytes never match because their MSB is set.
//
//go:inline
func matchH2(ctrl uint64, h2 uint8) bitset {
	v := ctrl ^ (bitsetLSB * uint64(h2))
	return bitset(((v - bitsetLSB) &^ v) & bitsetMSB)
}

// matchEmpty: MSB set and bit 1 clear. (0x80 = 10000000, 0xFE = 11111110)
//
//go:inline
func matchEmpty(ctrl uint64) bitset {
	return bitset((ctrl &^ (ctrl << 6)) & bitsetMSB)
}

// matchEmptyOrDeleted: MSB set.
//
//go:inline
func matchEmptyOrDeleted(ctrl uint64) bitset {
	return bitset(ctrl & bitsetMSB)
}

// matchFull: MSB clear, the byte holds an H2 fragment.
//
//go:inline
func matchFull(ctrl uint64) bitset {
	return bitset(^ctrl & bitsetMSB)
}

// invertCtrls prepares a group for in-place compaction:
// Full (0x00-0x7F) -> Deleted (0xFE)
// Deleted (0xFE) -> Empty (0x80)
// Empty (0x80) -> Empty (0x80)
//
//go:inline
func invertCtrls(ctrl uint64) uint64 {
	isFull := ^ctrl & bitsetMSB

	// Spread 0x80 -> 0xFE for full slots (bits 7-1, bit 0 stays clear).
	fullResult := isFull | (isFull >> 1) | (isFull >> 2) | (isFull >> 3) |
		(isFull >> 4) | (isFull >> 5) | (isFull >> 6)

	return fullResult | (ctrl & bitsetMSB)
}
