package abi

import (
	"unsafe"

	"github.com/homier/assoc/config"
	"github.com/homier/assoc/errcode"
	"github.com/homier/assoc/hashstore"
	"github.com/homier/assoc/orderedstore"
)

type erased = unsafe.Pointer

// Params selects the store behind a Container. MaxCapacity is the slot
// ceiling of the hash backend and the entry ceiling of the ordered backend;
// zero means the store default.
type Params struct {
	Backend     config.Backend
	Capacity    int
	MaxCapacity int
}

// Container owns copies of every key and value it stores, made with the
// Construct functions of its op tables and released with Destroy. Values of
// a zero-size type are not stored at all: the backing store keeps keys only
// and every value handle points at one shared zero-size variable.
//
// A Container is NOT goroutine-safe.
type Container struct {
	keys   *KeyOps
	values *ValueOps

	store store

	destroyed bool
}

func NewContainer(p Params, keys *KeyOps, values *ValueOps) (*Container, errcode.Code) {
	if keys == nil || values == nil ||
		keys.Construct == nil || keys.Destroy == nil ||
		values.Construct == nil || values.Assign == nil || values.Destroy == nil {
		return nil, errcode.BadLogic
	}

	c := &Container{keys: keys, values: values}
	keyOnly := values.Size == 0

	switch p.Backend {
	case config.BackendHash:
		if keys.Hash == nil || keys.Equal == nil {
			return nil, errcode.BadLogic
		}

		if keyOnly {
			c.store = newHashStore[struct{}](p, keys)
		} else {
			c.store = newHashStore[erased](p, keys)
		}
	case config.BackendOrdered:
		if keys.Compare == nil {
			return nil, errcode.BadLogic
		}

		if keyOnly {
			c.store = newTreeStore[struct{}](p, keys)
		} else {
			c.store = newTreeStore[erased](p, keys)
		}
	default:
		return nil, errcode.NotSupported
	}

	return c, errcode.OK
}

func (c *Container) validKey(h Handle) bool {
	return !c.destroyed && h.matches(c.keys.Size, c.keys.Align)
}

func (c *Container) validValue(h Handle) bool {
	return !c.destroyed && h.matches(c.values.Size, c.values.Align)
}

func (c *Container) entry(key erased) (erased, erased, bool) {
	return c.store.entry(key)
}

func (c *Container) Len() int {
	if c.destroyed {
		return 0
	}

	return c.store.Len()
}

func (c *Container) Contains(key Handle) errcode.Code {
	if !c.validKey(key) {
		return errcode.BadAccess
	}

	if _, _, ok := c.entry(key.Ptr); !ok {
		return errcode.NotFound
	}

	return errcode.OK
}

// Insert copies key and value into the container if key is absent.
func (c *Container) Insert(key, value Handle) errcode.Code {
	if !c.validKey(key) || !c.validValue(value) {
		return errcode.BadAccess
	}

	if _, _, ok := c.entry(key.Ptr); ok {
		return errcode.AlreadyPresent
	}

	return c.add(key, value)
}

// Assign overwrites the stored value in place or inserts a copy.
func (c *Container) Assign(key, value Handle) errcode.Code {
	if !c.validKey(key) || !c.validValue(value) {
		return errcode.BadAccess
	}

	if _, v, ok := c.entry(key.Ptr); ok {
		c.values.Assign(v, value.Ptr)
		return errcode.OK
	}

	return c.add(key, value)
}

func (c *Container) add(key, value Handle) errcode.Code {
	k := c.keys.Construct(key.Ptr)

	v := zeroValue
	if c.values.Size != 0 {
		v = c.values.Construct(value.Ptr)
	}

	err := c.store.insert(k, v)
	if err != nil {
		c.keys.Destroy(k)
		c.values.Destroy(v)
	}

	return errcode.Of(err)
}

// Find copies the value stored under key into out.
func (c *Container) Find(key, out Handle) errcode.Code {
	if !c.validKey(key) || !c.validValue(out) {
		return errcode.BadAccess
	}

	_, v, ok := c.entry(key.Ptr)
	if !ok {
		return errcode.NotFound
	}

	c.values.Assign(out.Ptr, v)

	return errcode.OK
}

func (c *Container) Erase(key Handle) errcode.Code {
	if !c.validKey(key) {
		return errcode.BadAccess
	}

	k, v, ok := c.entry(key.Ptr)
	if !ok {
		return errcode.NotFound
	}

	if err := c.store.erase(key.Ptr); err != nil {
		errcode.Abort("abi: erase of a present key failed: %v", err)
	}

	c.keys.Destroy(k)
	c.values.Destroy(v)

	return errcode.OK
}

// Iterate calls fn with borrowed handles to every entry until fn returns
// false. The order is that of the backend. Handles are valid until the next
// mutation; mutating from fn panics.
func (c *Container) Iterate(fn func(key, value Handle) bool) {
	if c.destroyed {
		return
	}

	for k, v := range c.store.all() {
		if !fn(c.keyHandle(k), c.valueHandle(v)) {
			return
		}
	}
}

// Range is Iterate restricted to low <= key < high in ascending order. A
// handle with a nil Ptr leaves that side open. Only the ordered backend
// supports it.
func (c *Container) Range(low, high Handle, fn func(key, value Handle) bool) errcode.Code {
	if c.destroyed {
		return errcode.BadAccess
	}

	tree, ok := c.store.(ranger)
	if !ok {
		return errcode.NotSupported
	}

	lo, hi := orderedstore.Unbounded[erased](), orderedstore.Unbounded[erased]()

	if low.Ptr != nil {
		if !c.validKey(low) {
			return errcode.BadAccess
		}

		lo = orderedstore.At(low.Ptr)
	}

	if high.Ptr != nil {
		if !c.validKey(high) {
			return errcode.BadAccess
		}

		hi = orderedstore.At(high.Ptr)
	}

	for k, v := range tree.rangeOver(lo, hi) {
		if !fn(c.keyHandle(k), c.valueHandle(v)) {
			break
		}
	}

	return errcode.OK
}

// Clear destroys every entry and keeps the container usable.
func (c *Container) Clear() errcode.Code {
	if c.destroyed {
		return errcode.BadAccess
	}

	c.Iterate(func(k, v Handle) bool {
		c.keys.Destroy(k.Ptr)
		c.values.Destroy(v.Ptr)

		return true
	})

	c.store.clear()

	return errcode.OK
}

// Destroy releases every entry. Any later call reports BadAccess.
func (c *Container) Destroy() errcode.Code {
	if code := c.Clear(); code != errcode.OK {
		return code
	}

	c.destroyed = true
	c.store = nil

	return errcode.OK
}

// Stats reports the layout of the hash backend. The ordered backend has no
// slots and reports NotSupported.
func (c *Container) Stats() (hashstore.Stats, errcode.Code) {
	if c.destroyed {
		return hashstore.Stats{}, errcode.BadAccess
	}

	s, ok := c.store.(statser)
	if !ok {
		return hashstore.Stats{}, errcode.NotSupported
	}

	return s.stats(), errcode.OK
}

func (c *Container) keyHandle(p erased) Handle {
	return Handle{Ptr: p, Size: c.keys.Size, Align: c.keys.Align}
}

func (c *Container) valueHandle(p erased) Handle {
	return Handle{Ptr: p, Size: c.values.Size, Align: c.values.Align}
}
