package orderedstore

import (
	"iter"
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homier/assoc/errcode"
)

func collect[K, V any](seq iter.Seq2[K, V]) ([]K, []V) {
	var (
		keys   []K
		values []V
	)

	for k, v := range seq {
		keys = append(keys, k)
		values = append(values, v)
	}

	return keys, values
}

func TestTree_Ordered(t *testing.T) {
	tr := NewOrdered[int, string]()

	require.NoError(t, tr.Insert(3, "c"))
	require.NoError(t, tr.Insert(1, "a"))
	require.NoError(t, tr.Insert(2, "b"))

	keys, values := collect(tr.All())
	assert.Equal(t, []int{1, 2, 3}, keys)
	assert.Equal(t, []string{"a", "b", "c"}, values)
	require.NoError(t, tr.Check())
}

func TestTree_Insert(t *testing.T) {
	tr := NewOrdered[string, int]()

	require.NoError(t, tr.Insert("a", 1))
	require.ErrorIs(t, tr.Insert("a", 2), errcode.ErrKeyAlreadyPresent)

	v, ok := tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v, "insert must not overwrite")
	assert.Equal(t, 1, tr.Len())
}

func TestTree_Assign(t *testing.T) {
	tr := NewOrdered[string, int]()

	require.NoError(t, tr.Assign("a", 1))
	require.NoError(t, tr.Assign("a", 2))

	v, err := tr.Find("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, tr.Len())
}

func TestTree_Find(t *testing.T) {
	tr := NewOrdered[int, string]()
	require.NoError(t, tr.Insert(2, "b"))

	_, err := tr.Find(5)
	require.ErrorIs(t, err, errcode.ErrKeyNotFound)
	assert.False(t, tr.Has(5))
	assert.True(t, tr.Has(2))
}

func TestTree_Entry(t *testing.T) {
	// case insensitive order: the stored key keeps its original spelling
	tr := New[string, int](func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	require.NoError(t, tr.Insert("Hello", 1))
	require.ErrorIs(t, tr.Insert("HELLO", 2), errcode.ErrKeyAlreadyPresent)

	k, v, ok := tr.Entry("hello")
	require.True(t, ok)
	assert.Equal(t, "Hello", k)
	assert.Equal(t, 1, v)

	_, _, ok = tr.Entry("bye")
	assert.False(t, ok)
}

func TestTree_Erase(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 100 {
		require.NoError(t, tr.Insert(i, i))
	}

	for i := 0; i < 100; i += 3 {
		require.NoError(t, tr.Erase(i))
		require.NoError(t, tr.Check())
	}

	for i := range 100 {
		require.Equal(t, i%3 != 0, tr.Has(i), "key %d", i)
	}
}

func TestTree_Erase_MissLeavesTreeUnchanged(t *testing.T) {
	tr := NewOrdered[int, int]()
	for _, k := range []int{5, 1, 9, 3, 7} {
		require.NoError(t, tr.Insert(k, k))
	}

	keys, _ := collect(tr.All())
	height := tr.Height()
	mutations := tr.mutations

	require.ErrorIs(t, tr.Erase(4), errcode.ErrKeyNotFound)

	after, _ := collect(tr.All())
	assert.Equal(t, keys, after)
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, height, tr.Height())
	assert.Equal(t, mutations, tr.mutations)
}

func TestTree_HeightBound(t *testing.T) {
	tr := NewOrdered[int, struct{}]()

	// Ascending inserts degenerate an unbalanced tree into a list.
	const n = 1 << 14
	for i := range n {
		require.NoError(t, tr.Insert(i, struct{}{}))
	}

	require.NoError(t, tr.Check())
	assert.LessOrEqual(t, float64(tr.Height()), 1.45*math.Log2(n+2))
}

func TestTree_MinMax(t *testing.T) {
	tr := NewOrdered[int, string]()

	_, _, ok := tr.Min()
	assert.False(t, ok)

	for _, k := range []int{5, 1, 9} {
		require.NoError(t, tr.Insert(k, "v"))
	}

	k, _, ok := tr.Min()
	require.True(t, ok)
	assert.Equal(t, 1, k)

	k, _, ok = tr.Max()
	require.True(t, ok)
	assert.Equal(t, 9, k)
}

func TestTree_Backward(t *testing.T) {
	tr := NewOrdered[int, int]()
	for _, k := range []int{2, 4, 1, 3} {
		require.NoError(t, tr.Insert(k, k))
	}

	keys, _ := collect(tr.Backward())
	assert.Equal(t, []int{4, 3, 2, 1}, keys)
}

func TestTree_Range(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := 0; i < 20; i += 2 {
		require.NoError(t, tr.Insert(i, i))
	}

	tests := []struct {
		name      string
		low, high Bound[int]
		want      []int
	}{
		{"unbounded", Unbounded[int](), Unbounded[int](), []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}},
		{"inclusive low, exclusive high", At(4), At(10), []int{4, 6, 8}},
		{"bounds between keys", At(3), At(11), []int{4, 6, 8, 10}},
		{"open low", Unbounded[int](), At(5), []int{0, 2, 4}},
		{"open high", At(15), Unbounded[int](), []int{16, 18}},
		{"empty", At(6), At(6), nil},
		{"inverted", At(10), At(2), nil},
		{"gap", At(5), At(6), nil},
		{"below all", Unbounded[int](), At(0), nil},
		{"above all", At(100), Unbounded[int](), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, _ := collect(tr.Range(tt.low, tt.high))
			require.Equal(t, tt.want, keys)
		})
	}
}

func TestTree_Range_Break(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 50 {
		require.NoError(t, tr.Insert(i, i))
	}

	var got []int
	for k := range tr.Range(At(10), Unbounded[int]()) {
		got = append(got, k)
		if len(got) == 3 {
			break
		}
	}

	assert.Equal(t, []int{10, 11, 12}, got)
}

func TestTree_MutationPanics(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 10 {
		require.NoError(t, tr.Insert(i, i))
	}

	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, errcode.ErrInvariantViolation)
	}()

	for k := range tr.All() {
		_ = tr.Insert(k+100, k)
	}
}

func TestTree_AssignDuringIteration(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 10 {
		require.NoError(t, tr.Insert(i, i))
	}

	for k, v := range tr.All() {
		require.NoError(t, tr.Assign(k, v*2))
	}

	_, values := collect(tr.All())
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, values)
}

func TestTree_WithMaxLen(t *testing.T) {
	tr := NewOrdered(WithMaxLen[int, int](2))

	require.NoError(t, tr.Insert(1, 1))
	require.NoError(t, tr.Insert(2, 2))

	err := tr.Insert(3, 3)
	require.ErrorIs(t, err, errcode.ErrCapacityExhausted)
	require.ErrorIs(t, tr.Assign(3, 3), errcode.ErrCapacityExhausted)

	// existing keys still behave normally at the limit
	require.ErrorIs(t, tr.Insert(1, 1), errcode.ErrKeyAlreadyPresent)
	require.NoError(t, tr.Assign(1, 10))

	require.NoError(t, tr.Erase(2))
	require.NoError(t, tr.Insert(3, 3))
}

func TestTree_Clear(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 10 {
		require.NoError(t, tr.Insert(i, i))
	}

	tr.Clear()

	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, tr.Height())
	assert.False(t, tr.Has(3))
	require.NoError(t, tr.Check())
}

func TestTree_Check_Detects(t *testing.T) {
	tr := NewOrdered[int, int]()
	for i := range 7 {
		require.NoError(t, tr.Insert(i, i))
	}

	tr.root.left.key = 100

	err := tr.Check()
	require.ErrorIs(t, err, errcode.ErrInvariantViolation)
}

func TestNew_NilCompare(t *testing.T) {
	require.Panics(t, func() {
		New[int, int](nil)
	})
}

// TestTree_Model runs random operations against a builtin map.
func TestTree_Model(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewOrdered[int, int]()
	model := map[int]int{}

	for i := range 20_000 {
		k := rng.Intn(1000)

		switch rng.Intn(3) {
		case 0:
			err := tr.Insert(k, k)
			if _, ok := model[k]; ok {
				require.ErrorIs(t, err, errcode.ErrKeyAlreadyPresent)
			} else {
				require.NoError(t, err)
				model[k] = k
			}
		case 1:
			err := tr.Erase(k)
			if _, ok := model[k]; ok {
				require.NoError(t, err)
				delete(model, k)
			} else {
				require.ErrorIs(t, err, errcode.ErrKeyNotFound)
			}
		case 2:
			lo, hi := rng.Intn(1000), rng.Intn(1000)

			var want []int
			for mk := range model {
				if mk >= lo && mk < hi {
					want = append(want, mk)
				}
			}
			slices.Sort(want)

			got, _ := collect(tr.Range(At(lo), At(hi)))
			require.Equal(t, want, got)
		}

		if i%500 == 0 {
			require.NoError(t, tr.Check())
		}
	}

	require.NoError(t, tr.Check())
	keys, _ := collect(tr.All())
	require.Len(t, keys, len(model))
	require.True(t, slices.IsSorted(keys))
}
