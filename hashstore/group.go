package hashstore

import "encoding/binary"

const (
	groupSize = 8

	slotEmpty   = 0x80
	slotDeleted = 0xFE
)

var emptyCtrls = [groupSize]uint8{
	slotEmpty, slotEmpty, slotEmpty, slotEmpty,
	slotEmpty, slotEmpty, slotEmpty, slotEmpty,
}

// group is the unit of probing: 8 control bytes followed by 8 entries.
//
// Values sit between the control bytes and the keys. A zero-size V (the
// struct{} of a Set) then occupies no bytes at all, whereas a trailing
// zero-size array would get padded by the compiler.
type group[K comparable, V any] struct {
	ctrls  [groupSize]uint8
	values [groupSize]V
	slots  [groupSize]K
}

// ctrlWord loads all 8 control bytes. Byte i of the word is slot i.
func (g *group[K, V]) ctrlWord() uint64 {
	return binary.LittleEndian.Uint64(g.ctrls[:])
}

func (g *group[K, V]) setCtrlWord(w uint64) {
	binary.LittleEndian.PutUint64(g.ctrls[:], w)
}

// clearSlot drops the references held by a slot so they can be collected.
func (g *group[K, V]) clearSlot(idx uintptr) {
	var (
		zeroK K
		zeroV V
	)

	g.slots[idx] = zeroK
	g.values[idx] = zeroV
}
