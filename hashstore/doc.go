// Package hashstore implements the hash backed store of the assoc
// containers: a growable swiss table with O(1) amortized lookups and
// unordered iteration.
//
// Collisions are resolved by open addressing. Slots are grouped by 8 and
// each group carries 8 control bytes (empty, deleted or the low 7 bits of
// the hash), which lets a lookup test a whole group with a few word
// operations before comparing keys. Groups are probed in triangular order.
package hashstore
