package hashstore

import (
	"hash/maphash"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/homier/assoc/errcode"
)

const (
	DefaultMaxLoadFactor    = 7.0 / 8.0
	DefaultShrinkLoadFactor = 1.0 / 8.0
	DefaultMaxCapacity      = 1 << 30
)

// Table is a swiss table: open addressing over groups of 8 slots with a
// control byte per slot, linear matching inside a group and triangular
// probing across groups. Capacity is a power of two.
//
// The table grows (doubling) before an insert would push the load factor past
// its maximum, compacts in place when only tombstones are in the way, and
// shrinks after an erase drops the load below the shrink factor. Every rehash
// builds the new layout before it becomes visible.
//
// A Table is NOT goroutine-safe.
type Table[K comparable, V any] struct {
	groups []group[K, V]

	capacity      uintptr
	numGroupsMask uintptr
	growthLimit   uintptr
	shrinkLimit   uintptr
	size          uintptr
	tombstones    uintptr

	minCapacity      uintptr
	maxCapacity      uintptr
	maxLoadFactor    float64
	shrinkLoadFactor float64

	hashFunc  HashFunc[K]
	equalFunc EqualFunc[K]
	seed      *maphash.Seed

	// mutations counts structural changes; iterators compare it to fail fast.
	mutations uint64
}

type Option[K comparable, V any] func(t *Table[K, V])

// Override default hash function.
func WithHashFunc[K comparable, V any](f HashFunc[K]) Option[K, V] {
	return func(t *Table[K, V]) {
		t.hashFunc = f
	}
}

// Override == as the key equality.
func WithEqualFunc[K comparable, V any](f EqualFunc[K]) Option[K, V] {
	return func(t *Table[K, V]) {
		t.equalFunc = f
	}
}

// Seed for the default hash function. Ignored when WithHashFunc is given.
func WithSeed[K comparable, V any](seed maphash.Seed) Option[K, V] {
	return func(t *Table[K, V]) {
		t.seed = &seed
	}
}

// Ceiling for growth, in slots, rounded down to a power of two. Inserts that
// would need more report errcode.ErrCapacityExhausted. A ceiling equal to the
// initial capacity gives a table that never reallocates.
func WithMaxCapacity[K comparable, V any](capacity int) Option[K, V] {
	return func(t *Table[K, V]) {
		t.maxCapacity = floorCapacity(capacity)
	}
}

// Values outside (0, 1) are ignored.
func WithMaxLoadFactor[K comparable, V any](f float64) Option[K, V] {
	return func(t *Table[K, V]) {
		if f > 0 && f < 1 {
			t.maxLoadFactor = f
		}
	}
}

// Zero disables shrinking. Values outside [0, maxLoadFactor/4) are ignored.
func WithShrinkLoadFactor[K comparable, V any](f float64) Option[K, V] {
	return func(t *Table[K, V]) {
		t.shrinkLoadFactor = f
	}
}

// Returns a new table able to hold at least capacity slots without growing.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Table[K, V] {
	var t Table[K, V]
	t.init(capacity, opts...)

	return &t
}

func (t *Table[K, V]) init(capacity int, opts ...Option[K, V]) {
	t.maxCapacity = DefaultMaxCapacity
	t.maxLoadFactor = DefaultMaxLoadFactor
	t.shrinkLoadFactor = DefaultShrinkLoadFactor

	for _, opt := range opts {
		opt(t)
	}

	if t.shrinkLoadFactor < 0 || t.shrinkLoadFactor >= t.maxLoadFactor/4 {
		t.shrinkLoadFactor = min(DefaultShrinkLoadFactor, t.maxLoadFactor/8)
	}

	if t.hashFunc == nil {
		seed := maphash.MakeSeed()
		if t.seed != nil {
			seed = *t.seed
		}

		t.hashFunc = MakeDefaultHashFunc[K](seed)
	}

	t.minCapacity = normalizeCapacity(capacity)
	t.maxCapacity = max(t.maxCapacity, t.minCapacity)
	t.setGroups(t.minCapacity)
}

// setGroups installs a fresh, empty group array of the given slot count.
func (t *Table[K, V]) setGroups(capacity uintptr) {
	groups := make([]group[K, V], capacity/groupSize)
	for i := range groups {
		groups[i].ctrls = emptyCtrls
	}

	t.groups = groups
	t.capacity = capacity
	t.numGroupsMask = uintptr(len(groups) - 1)
	t.growthLimit = t.growthLimitFor(capacity)
	t.shrinkLimit = uintptr(float64(capacity) * t.shrinkLoadFactor)
	t.size = 0
	t.tombstones = 0
}

// growthLimitFor is the largest size a table of the given capacity may hold.
// It always leaves at least one empty slot so that probing terminates.
func (t *Table[K, V]) growthLimitFor(capacity uintptr) uintptr {
	return min(uintptr(float64(capacity)*t.maxLoadFactor), capacity-1)
}

func (t *Table[K, V]) equal(a, b K) bool {
	if t.equalFunc != nil {
		return t.equalFunc(a, b)
	}

	return a == b
}

func (t *Table[K, V]) Len() int {
	return int(t.size)
}

// Cap returns the number of slots.
func (t *Table[K, V]) Cap() int {
	return int(t.capacity)
}

// EffectiveCapacity returns how many entries fit before the table grows.
func (t *Table[K, V]) EffectiveCapacity() int {
	return int(t.growthLimit)
}

func (t *Table[K, V]) LoadFactor() float64 {
	return float64(t.size) / float64(t.capacity)
}

func (t *Table[K, V]) Stats() Stats {
	s := Stats{
		Size:              int(t.size),
		Capacity:          int(t.capacity),
		EffectiveCapacity: int(t.growthLimit),
		Tombstones:        int(t.tombstones),
		LoadFactor:        float32(t.LoadFactor()),
		MemoryBytes:       uint64(len(t.groups)) * uint64(unsafe.Sizeof(group[K, V]{})),
	}

	s.TombstonesCapacityRatio = float32(t.tombstones) / float32(t.capacity)
	if t.size > 0 {
		s.TombstonesSizeRatio = float32(t.tombstones) / float32(t.size)
	}

	return s
}

// lookup walks the probe sequence of key and returns its group and slot.
func (t *Table[K, V]) lookup(key K, h1 uintptr, h2 uint8) (*group[K, V], uintptr, bool) {
	mask := t.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; p <= mask; p++ {
		g := &t.groups[offset]
		ctrl := g.ctrlWord()

		matches := matchH2(ctrl, h2)
		for matches != 0 {
			idx := matches.first()
			if t.equal(g.slots[idx], key) {
				return g, idx, true
			}

			matches = matches.removeFirst()
		}

		if matchEmpty(ctrl) != 0 {
			return nil, 0, false
		}

		// Quadratic probe math
		offset = (start + (p+1)*(p+2)/2) & mask
	}

	return nil, 0, false
}

// findInsertSlot returns the first empty or deleted slot on the probe
// sequence. The caller guarantees the key is absent and the table has room.
func (t *Table[K, V]) findInsertSlot(h1 uintptr) (*group[K, V], uintptr) {
	mask := t.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; p <= mask; p++ {
		g := &t.groups[offset]

		if m := matchEmptyOrDeleted(g.ctrlWord()); m != 0 {
			return g, m.first()
		}

		offset = (start + (p+1)*(p+2)/2) & mask
	}

	errcode.Abort("hashstore: no free slot in a table of %d slots holding %d entries and %d tombstones",
		t.capacity, t.size, t.tombstones)

	return nil, 0
}

func (t *Table[K, V]) place(h1 uintptr, h2 uint8, key K, value V) {
	g, idx := t.findInsertSlot(h1)
	if g.ctrls[idx] == slotDeleted {
		t.tombstones--
	}

	g.ctrls[idx] = h2
	g.slots[idx] = key
	g.values[idx] = value
	t.size++
	t.mutations++
}

// reserve makes room for n more entries, rehashing if needed.
func (t *Table[K, V]) reserve(n uintptr) error {
	if t.size+t.tombstones+n <= t.growthLimit {
		return nil
	}

	fits := t.size+n <= t.growthLimit

	// Plenty of tombstones: reclaim them without reallocating.
	if fits && (t.size+n)*4 <= t.growthLimit*3 {
		t.Compact()
		return nil
	}

	target := t.capacity * 2
	for t.growthLimitFor(target) < t.size+n && target <= t.maxCapacity {
		target *= 2
	}

	if target > t.maxCapacity {
		if fits {
			t.Compact()
			return nil
		}

		return errors.Wrapf(errcode.ErrCapacityExhausted,
			"hashstore: %d entries need more than the maximum of %d slots", t.size+n, t.maxCapacity)
	}

	t.resize(target)

	return nil
}

// resize rebuilds the table with the given number of slots.
func (t *Table[K, V]) resize(capacity uintptr) {
	old := t.groups
	mutations := t.mutations

	t.setGroups(capacity)

	for i := range old {
		g := &old[i]
		full := matchFull(g.ctrlWord())

		for full != 0 {
			idx := full.first()
			h1, h2 := HashSplit(t.hashFunc(g.slots[idx]))
			t.place(h1, h2, g.slots[idx], g.values[idx])
			full = full.removeFirst()
		}
	}

	t.mutations = mutations + 1
}

// Grow reserves room for n more entries.
func (t *Table[K, V]) Grow(n int) error {
	if n <= 0 {
		return nil
	}

	return t.reserve(uintptr(n))
}

// Get returns the value stored under key.
func (t *Table[K, V]) Get(key K) (V, bool) {
	h1, h2 := HashSplit(t.hashFunc(key))
	if g, idx, ok := t.lookup(key, h1, h2); ok {
		return g.values[idx], true
	}

	var zero V
	return zero, false
}

// Find is Get reporting a miss as errcode.ErrKeyNotFound.
func (t *Table[K, V]) Find(key K) (V, error) {
	v, ok := t.Get(key)
	if !ok {
		return v, errcode.ErrKeyNotFound
	}

	return v, nil
}

func (t *Table[K, V]) Has(key K) bool {
	h1, h2 := HashSplit(t.hashFunc(key))
	_, _, ok := t.lookup(key, h1, h2)

	return ok
}

// Entry returns the stored key along with its value. The stored key differs
// from the argument only under a custom equality.
func (t *Table[K, V]) Entry(key K) (K, V, bool) {
	h1, h2 := HashSplit(t.hashFunc(key))
	if g, idx, ok := t.lookup(key, h1, h2); ok {
		return g.slots[idx], g.values[idx], true
	}

	var (
		zeroK K
		zeroV V
	)

	return zeroK, zeroV, false
}

// Insert adds key if absent. An existing entry is left untouched and
// errcode.ErrKeyAlreadyPresent is returned.
func (t *Table[K, V]) Insert(key K, value V) error {
	h1, h2 := HashSplit(t.hashFunc(key))
	if _, _, ok := t.lookup(key, h1, h2); ok {
		return errcode.ErrKeyAlreadyPresent
	}

	if err := t.reserve(1); err != nil {
		return err
	}

	t.place(h1, h2, key, value)

	return nil
}

// Assign inserts key or overwrites its value. Overwriting is not a
// structural change and does not invalidate iterators.
func (t *Table[K, V]) Assign(key K, value V) error {
	h1, h2 := HashSplit(t.hashFunc(key))
	if g, idx, ok := t.lookup(key, h1, h2); ok {
		g.values[idx] = value
		return nil
	}

	if err := t.reserve(1); err != nil {
		return err
	}

	t.place(h1, h2, key, value)

	return nil
}

// Erase removes key. A miss returns errcode.ErrKeyNotFound and changes
// nothing.
func (t *Table[K, V]) Erase(key K) error {
	h1, h2 := HashSplit(t.hashFunc(key))

	g, idx, ok := t.lookup(key, h1, h2)
	if !ok {
		return errcode.ErrKeyNotFound
	}

	// A group that still has an empty slot never made a probe continue past
	// it, so the slot can become empty again. Otherwise leave a tombstone.
	if matchEmpty(g.ctrlWord()) != 0 {
		g.ctrls[idx] = slotEmpty
	} else {
		g.ctrls[idx] = slotDeleted
		t.tombstones++
	}

	g.clearSlot(idx)
	t.size--
	t.mutations++

	t.maybeShrink()

	return nil
}

func (t *Table[K, V]) maybeShrink() {
	if t.shrinkLoadFactor == 0 || t.capacity <= t.minCapacity || t.size >= t.shrinkLimit {
		return
	}

	target := t.minCapacity
	for t.growthLimitFor(target) < t.size {
		target *= 2
	}

	// Twice the tight fit leaves headroom against erase/insert ping-pong.
	target = min(target*2, t.capacity/2)
	if target < t.minCapacity || target >= t.capacity {
		return
	}

	t.resize(target)
}

// Reset drops every entry and keeps the current capacity.
func (t *Table[K, V]) Reset() {
	for i := range t.groups {
		g := &t.groups[i]
		g.ctrls = emptyCtrls
		clear(g.slots[:])
		clear(g.values[:])
	}

	t.size = 0
	t.tombstones = 0
	t.mutations++
}

// Compact drops all tombstones in place.
func (t *Table[K, V]) Compact() {
	// We want to drop all of the deletes in place. We first walk over the
	// control bytes and mark every DELETED slot as EMPTY and every FULL slot
	// as DELETED. Marking the DELETED slots as EMPTY has effectively dropped
	// the tombstones, but we fouled up the probe invariant. Marking the FULL
	// slots as DELETED gives us a marker to locate the previously FULL slots.
	for i := range t.groups {
		g := &t.groups[i]
		g.setCtrlWord(invertCtrls(g.ctrlWord()))
	}

	mask := t.numGroupsMask

	for i := range t.groups {
		g := &t.groups[i]

		for j := uintptr(0); j < groupSize; j++ {
			// Only slots that were full before the inversion.
			if g.ctrls[j] != slotDeleted {
				continue
			}

			h1, h2 := HashSplit(t.hashFunc(g.slots[j]))
			start := (h1 / groupSize) & mask

			var (
				target *group[K, V]
				slot   uintptr
			)

			for p, offset := uintptr(0), start; ; p++ {
				tg := &t.groups[offset]
				if m := matchEmptyOrDeleted(tg.ctrlWord()); m != 0 {
					target, slot = tg, m.first()
					break
				}

				offset = (start + (p+1)*(p+2)/2) & mask
			}

			switch {
			case target == g && slot == j:
				g.ctrls[j] = h2
			case target.ctrls[slot] == slotEmpty:
				target.ctrls[slot] = h2
				target.slots[slot] = g.slots[j]
				target.values[slot] = g.values[j]
				g.ctrls[j] = slotEmpty
				g.clearSlot(j)
			default:
				// The target still holds an unprocessed entry: swap it into
				// our slot and process that one next.
				target.ctrls[slot] = h2
				g.slots[j], target.slots[slot] = target.slots[slot], g.slots[j]
				g.values[j], target.values[slot] = target.values[slot], g.values[j]
				j--
			}
		}
	}

	t.tombstones = 0
	t.mutations++
}
