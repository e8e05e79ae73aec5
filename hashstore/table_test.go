package hashstore

import (
	"hash/maphash"
	"math/rand"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homier/assoc/errcode"
)

func TestTable_init(t *testing.T) {
	var tt Table[uint64, struct{}]

	tt.init(4096)

	require.Len(t, tt.groups, 4096/groupSize)
	require.Equal(t, uintptr((4096/groupSize)-1), tt.numGroupsMask)
	require.Equal(t, 4096, tt.Cap())
}

func TestTable_init_SmallCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0, 1, 7, 8} {
		tt := New[int, int](capacity)
		require.Equal(t, groupSize, tt.Cap())
	}
}

func TestTable_EffectiveCapacity(t *testing.T) {
	tt := New[uint64, struct{}](4096)

	require.Equal(t, 4096*7/8, tt.EffectiveCapacity())
}

func TestTable_GroupLayout(t *testing.T) {
	// Sets carry no value bytes at all.
	require.Equal(t, uintptr(groupSize+groupSize*8), unsafe.Sizeof(group[uint64, struct{}]{}))
	require.Equal(t, uintptr(groupSize+groupSize*16), unsafe.Sizeof(group[uint64, uint64]{}))
}

func TestTable_Insert(t *testing.T) {
	tt := New[string, string](16)

	require.NoError(t, tt.Insert("foo", "bar"))

	err := tt.Insert("foo", "bar2")
	require.ErrorIs(t, err, errcode.ErrKeyAlreadyPresent)

	v, ok := tt.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "bar", v, "insert must not overwrite")
	assert.Equal(t, 1, tt.Len())
}

func TestTable_Assign(t *testing.T) {
	tt := New[string, string](16)

	require.NoError(t, tt.Assign("foo", "foo"))

	v, ok := tt.Get("foo")
	require.True(t, ok)
	require.Equal(t, "foo", v)

	require.NoError(t, tt.Assign("foo", "bar"))

	v, ok = tt.Get("foo")
	require.True(t, ok)
	require.Equal(t, "bar", v)
	require.Equal(t, 1, tt.Len())
}

func TestTable_Find(t *testing.T) {
	tt := New[int, string](16)
	for i, v := range []string{"a", "b", "c"} {
		require.NoError(t, tt.Insert(i+1, v))
	}

	v, err := tt.Find(2)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	_, err = tt.Find(5)
	require.ErrorIs(t, err, errcode.ErrKeyNotFound)
	assert.False(t, tt.Has(5))
	assert.True(t, tt.Has(3))
}

func TestTable_Erase(t *testing.T) {
	tt := New[int, int](16)
	for i := range 5 {
		require.NoError(t, tt.Insert(i, i))
	}

	require.NoError(t, tt.Erase(2))
	require.ErrorIs(t, tt.Erase(2), errcode.ErrKeyNotFound)

	_, ok := tt.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 4, tt.Len())
}

func TestTable_Erase_MissLeavesTableUnchanged(t *testing.T) {
	tt := New[int, int](64)
	for i := range 40 {
		require.NoError(t, tt.Insert(i, i*2))
	}

	before := maps(tt)
	stats := tt.Stats()
	mutations := tt.mutations

	require.ErrorIs(t, tt.Erase(1000), errcode.ErrKeyNotFound)

	assert.Equal(t, before, maps(tt))
	assert.Equal(t, stats, tt.Stats())
	assert.Equal(t, mutations, tt.mutations)
}

func TestTable_Grow(t *testing.T) {
	tt := New[int, int](8)

	const n = 10_000
	for i := range n {
		require.NoError(t, tt.Insert(i, -i))
		require.LessOrEqual(t, tt.LoadFactor(), DefaultMaxLoadFactor)
	}

	require.Equal(t, n, tt.Len())
	for i := range n {
		v, ok := tt.Get(i)
		require.Truef(t, ok, "lost key %d after growth", i)
		require.Equal(t, -i, v)
	}
}

func TestTable_Grow_Reserve(t *testing.T) {
	tt := New[int, int](8)

	require.NoError(t, tt.Grow(1000))
	capacity := tt.Cap()
	require.GreaterOrEqual(t, tt.EffectiveCapacity(), 1000)

	for i := range 1000 {
		require.NoError(t, tt.Insert(i, i))
	}

	require.Equal(t, capacity, tt.Cap(), "reserved table must not grow again")
}

func TestTable_MaxLoadFactor(t *testing.T) {
	tt := New(8, WithMaxLoadFactor[int, int](0.75))

	for i := range 1000 {
		require.NoError(t, tt.Insert(i, i))
		require.LessOrEqual(t, tt.LoadFactor(), 0.75)
	}
}

func TestTable_ErrCapacityExhausted(t *testing.T) {
	tt := New(8, WithMaxCapacity[int, int](8))
	capacity := tt.EffectiveCapacity()

	for i := range capacity {
		require.NoError(t, tt.Insert(i, i))
	}

	err := tt.Insert(capacity+1, 999)
	require.ErrorIs(t, err, errcode.ErrCapacityExhausted)
	assert.Equal(t, errcode.CapacityExhausted, errcode.Of(err))

	// nothing was lost or added
	assert.Equal(t, capacity, tt.Len())
	assert.False(t, tt.Has(capacity+1))

	// an existing key still reports presence, not exhaustion
	require.ErrorIs(t, tt.Insert(0, 0), errcode.ErrKeyAlreadyPresent)
	require.NoError(t, tt.Assign(0, 42))
}

func TestTable_FixedCapacityReusesTombstones(t *testing.T) {
	tt := New(16, WithMaxCapacity[int, int](16), WithShrinkLoadFactor[int, int](0))
	capacity := tt.EffectiveCapacity()

	for round := range 10 {
		base := round * capacity
		for i := range capacity {
			require.NoError(t, tt.Insert(base+i, i))
		}

		for i := range capacity {
			require.NoError(t, tt.Erase(base+i))
		}
	}

	assert.Equal(t, 16, tt.Cap())
	assert.Equal(t, 0, tt.Len())
}

func TestTable_Shrink(t *testing.T) {
	tt := New[int, int](8)

	for i := range 4096 {
		require.NoError(t, tt.Insert(i, i))
	}

	grown := tt.Cap()

	for i := range 4090 {
		require.NoError(t, tt.Erase(i))
	}

	assert.Less(t, tt.Cap(), grown)
	assert.GreaterOrEqual(t, tt.Cap(), 8)

	for i := 4090; i < 4096; i++ {
		v, ok := tt.Get(i)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestTable_Shrink_Disabled(t *testing.T) {
	tt := New(8, WithShrinkLoadFactor[int, int](0))

	for i := range 1024 {
		require.NoError(t, tt.Insert(i, i))
	}

	grown := tt.Cap()
	for i := range 1024 {
		require.NoError(t, tt.Erase(i))
	}

	assert.Equal(t, grown, tt.Cap())
}

func TestTable_Tombstones(t *testing.T) {
	// Use a custom hash function that forces collisions
	// by returning the same h1 for everything.
	collisionHash := func(k string) uint64 {
		return 0 // All keys start at index 0
	}

	tt := New(16, WithHashFunc[string, string](collisionHash))

	require.NoError(t, tt.Insert("A", "foo")) // Slot 0
	require.NoError(t, tt.Insert("B", "bar")) // Slot 1 (via probe)
	require.NoError(t, tt.Insert("C", "lol")) // Slot 2 (via probe)

	// Delete the "bridge" element
	require.NoError(t, tt.Erase("B"))

	// Verify we can still find "C" even though there's a hole at "B"
	v, ok := tt.Get("C")
	require.True(t, ok, "Probe chain broken: could not find 'C' after deleting 'B'")
	require.Equal(t, "lol", v)
}

func TestTable_Tombstones_FullGroup(t *testing.T) {
	collisionHash := func(k int) uint64 {
		return 0
	}

	tt := New(16, WithHashFunc[int, int](collisionHash), WithShrinkLoadFactor[int, int](0))

	// 10 keys: the first group fills up and probing continues into the next.
	for i := range 10 {
		require.NoError(t, tt.Insert(i, i))
	}

	require.NoError(t, tt.Erase(3))
	assert.Equal(t, 1, tt.Stats().Tombstones, "erasing from a full group leaves a tombstone")

	for i := 8; i < 10; i++ {
		require.True(t, tt.Has(i), "key %d behind the full group is unreachable", i)
	}

	require.NoError(t, tt.Erase(9))
	assert.Equal(t, 1, tt.Stats().Tombstones, "erasing from a group with empty slots frees the slot")
}

func TestTable_EqualFunc(t *testing.T) {
	type key struct {
		id   int
		name string
	}

	byID := func(k key) uint64 { return uint64(k.id) * 0x9E3779B97F4A7C15 }
	eqID := func(a, b key) bool { return a.id == b.id }

	tt := New(16, WithHashFunc[key, string](byID), WithEqualFunc[key, string](eqID))

	require.NoError(t, tt.Insert(key{1, "first"}, "x"))
	require.ErrorIs(t, tt.Insert(key{1, "other"}, "y"), errcode.ErrKeyAlreadyPresent)

	stored, v, ok := tt.Entry(key{id: 1})
	require.True(t, ok)
	assert.Equal(t, "first", stored.name)
	assert.Equal(t, "x", v)
}

func TestTable_WithSeed(t *testing.T) {
	seed := maphash.MakeSeed()

	a := New(16, WithSeed[string, int](seed))
	b := New(16, WithSeed[string, int](seed))

	assert.Equal(t, a.hashFunc("foo"), b.hashFunc("foo"))
}

func TestTable_Compact(t *testing.T) {
	const capacity = 32
	tt := New(capacity, WithShrinkLoadFactor[int, int](0))

	// 1. Fill it up to the effective capacity
	for i := 0; i < tt.EffectiveCapacity(); i++ {
		require.NoError(t, tt.Insert(i, i))
	}

	// 2. Delete almost everything to create many tombstones
	for i := 0; i < tt.EffectiveCapacity()-1; i++ {
		require.NoError(t, tt.Erase(i))
	}

	// 3. Compact
	tt.Compact()

	// 4. Verify the one remaining element
	lastIdx := tt.EffectiveCapacity() - 1
	v, ok := tt.Get(lastIdx)
	require.Truef(t, ok, "Lost key %d after compaction", lastIdx)
	require.Equal(t, lastIdx, v)

	// 5. Verify no tombstones (0xFE) remain in the ctrls
	for i := range tt.groups {
		for j := range groupSize {
			require.NotEqualf(t, uint8(slotDeleted), tt.groups[i].ctrls[j], "Found tombstone at index %d after compaction", i)
		}
	}

	assert.Equal(t, 0, tt.Stats().Tombstones)
}

func TestTable_Compact_Sync(t *testing.T) {
	tt := New(16, WithShrinkLoadFactor[int, int](0))

	// 1. Fill it up to trigger many tombstones
	for i := range 10 {
		require.NoError(t, tt.Insert(i, i*100))
	}

	keys := make([]int, 0, 5)

	// 2. Delete half to create holes (tombstones)
	for len(keys) < 5 {
		idx := rand.Intn(10)

		if tt.Erase(idx) == nil {
			keys = append(keys, idx)
		}
	}

	// 3. Compact in-place
	tt.Compact()

	// 4. Verify remaining keys still have their correct values
	for idx := range 10 {
		if slices.Contains(keys, idx) {
			continue
		}

		val, ok := tt.Get(idx)
		require.True(t, ok)
		require.Equal(t, idx*100, val)
	}

	// 5. Verify deleted keys are not present
	for _, key := range keys {
		_, ok := tt.Get(key)

		require.False(t, ok)
	}
}

func TestTable_Compact_Collisions(t *testing.T) {
	// Few distinct hashes so that entries pile up across groups.
	hash := func(k int) uint64 {
		return uint64(k%3) << 10
	}

	tt := New(64, WithHashFunc[int, int](hash), WithShrinkLoadFactor[int, int](0))

	for i := range 50 {
		require.NoError(t, tt.Insert(i, i))
	}

	for i := 0; i < 50; i += 2 {
		require.NoError(t, tt.Erase(i))
	}

	tt.Compact()

	for i := range 50 {
		require.Equal(t, i%2 == 1, tt.Has(i), "key %d", i)
	}
}

func TestTable_BoundaryMirror(t *testing.T) {
	// 16 slots / 8 per group = 2 groups
	tt := New[int, int](16)

	// The last valid group index is ss.numGroupsMask (which is 1)
	targetGroupIdx := tt.numGroupsMask

	lastIdxKey := 0
	for {
		h1, _ := HashSplit(tt.hashFunc(lastIdxKey))
		// h1/8 gives the group index. Mask it to find keys landing in the last group.
		if (h1 / 8 & tt.numGroupsMask) == targetGroupIdx {
			break
		}
		lastIdxKey++
	}

	require.NoError(t, tt.Insert(lastIdxKey, lastIdxKey))

	v, ok := tt.Get(lastIdxKey)
	require.True(t, ok, "Failed to find key at the boundary of the capacity")
	require.Equal(t, lastIdxKey, v)
}

func TestTable_Reset(t *testing.T) {
	tt := New[int, int](16)

	for i := range 5 {
		require.NoError(t, tt.Insert(i, i))
	}

	assert.Equal(t, 5, tt.Stats().Size)

	tt.Reset()

	assert.Equal(t, 0, tt.Stats().Size)

	_, ok := tt.Get(0)
	assert.False(t, ok)
}

func TestTable_Stats(t *testing.T) {
	tt := New[int, int](16)

	stats := tt.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 14, stats.EffectiveCapacity) // 16 * 7/8 = 14

	for i := range 5 {
		require.NoError(t, tt.Insert(i, i))
	}

	stats = tt.Stats()
	assert.Equal(t, 5, stats.Size)
	assert.Equal(t, uint64(2*unsafe.Sizeof(group[int, int]{})), stats.MemoryBytes)
	assert.Contains(t, stats.String(), "size=5")
}

// TestTable_Model runs random operations against a builtin map.
func TestTable_Model(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tt := New[int, int](8)
	model := map[int]int{}

	for range 50_000 {
		k := rng.Intn(2000)

		switch rng.Intn(4) {
		case 0:
			err := tt.Insert(k, k)
			if _, ok := model[k]; ok {
				require.ErrorIs(t, err, errcode.ErrKeyAlreadyPresent)
			} else {
				require.NoError(t, err)
				model[k] = k
			}
		case 1:
			require.NoError(t, tt.Assign(k, -k))
			model[k] = -k
		case 2:
			err := tt.Erase(k)
			if _, ok := model[k]; ok {
				require.NoError(t, err)
				delete(model, k)
			} else {
				require.ErrorIs(t, err, errcode.ErrKeyNotFound)
			}
		case 3:
			v, ok := tt.Get(k)
			mv, mok := model[k]
			require.Equal(t, mok, ok)
			require.Equal(t, mv, v)
		}

		require.LessOrEqual(t, tt.LoadFactor(), DefaultMaxLoadFactor)
	}

	require.Equal(t, len(model), tt.Len())
	require.Equal(t, model, maps(tt))
}

func maps[K comparable, V any](tt *Table[K, V]) map[K]V {
	m := make(map[K]V, tt.Len())
	for k, v := range tt.All() {
		m[k] = v
	}

	return m
}
