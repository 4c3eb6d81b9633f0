// Package chunk implements the contiguous value buffer backing one physical
// segment of a column. A chunk is either owned (growable, private memory)
// or borrowed (an immutable zero-copy view over memory supplied by an Arrow
// import). Capacity arithmetic keeps every chunk's byte length under the
// Arrow 32-bit offset ceiling.
package chunk

import (
	"unsafe"

	"github.com/quarrydata/quarry/pkg/errors"
)

// Element is the set of fixed-width value types a chunk can store.
type Element interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// MaxRegionBytes is the largest byte length a single chunk may occupy.
// It keeps in-chunk byte offsets within a signed 32-bit integer, which the
// Arrow wire format requires of buffer offsets.
const MaxRegionBytes = 1<<31 - 1

// Sizeof returns the in-memory size of one element of T.
func Sizeof[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// MaxCapacity returns the largest number of elements of T a single chunk
// may hold.
func MaxCapacity[T Element]() int {
	return MaxRegionBytes / Sizeof[T]()
}

// Chunk stores a homogeneous run of fixed-width values.
type Chunk[T Element] struct {
	data  []T
	owned bool
}

// New allocates an owned chunk with room for capacity elements and zero
// length.
func New[T Element](capacity int) (*Chunk[T], error) {
	if capacity < 0 || capacity > MaxCapacity[T]() {
		return nil, errors.Newf(errors.ErrorTypeCapacity,
			"chunk capacity %d exceeds maximum %d", capacity, MaxCapacity[T]())
	}
	return &Chunk[T]{data: make([]T, 0, capacity), owned: true}, nil
}

// NewView wraps caller-supplied values as a borrowed, immutable chunk.
// The values are not copied; length and capacity equal len(values).
func NewView[T Element](values []T) *Chunk[T] {
	return &Chunk[T]{data: values[:len(values):len(values)]}
}

// Len returns the number of populated elements.
func (c *Chunk[T]) Len() int { return len(c.data) }

// Cap returns the number of allocated elements.
func (c *Chunk[T]) Cap() int { return cap(c.data) }

// Owned reports whether the chunk owns its backing memory.
func (c *Chunk[T]) Owned() bool { return c.owned }

// Values returns the populated elements. Callers must not mutate a
// borrowed chunk's values.
func (c *Chunk[T]) Values() []T { return c.data }

// Get returns element i. Panics if i is out of range, like a slice index.
func (c *Chunk[T]) Get(i int) T { return c.data[i] }

// Set overwrites element i. Random writes never grow the chunk.
func (c *Chunk[T]) Set(i int, v T) error {
	if !c.owned {
		return errors.New(errors.ErrorTypeInternal, "set on borrowed chunk")
	}
	if i < 0 || i >= len(c.data) {
		return errors.Newf(errors.ErrorTypeIndex,
			"chunk index %d out of range [0, %d)", i, len(c.data))
	}
	c.data[i] = v
	return nil
}

// Append writes v at the current length, growing if needed. Fails once the
// chunk is at MaxCapacity.
func (c *Chunk[T]) Append(v T) error {
	if err := c.EnsureCapacity(1); err != nil {
		return err
	}
	c.data = append(c.data, v)
	return nil
}

// AppendN writes v at the current length count times.
func (c *Chunk[T]) AppendN(v T, count int) error {
	if err := c.EnsureCapacity(count); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		c.data = append(c.data, v)
	}
	return nil
}

// EnsureCapacity grows the chunk to fit n more elements, doubling the
// current byte size (or jumping straight to the needed size if doubling is
// not enough), capped at MaxCapacity. Growth reallocates and copies.
func (c *Chunk[T]) EnsureCapacity(n int) error {
	if !c.owned {
		return errors.New(errors.ErrorTypeInternal, "grow on borrowed chunk")
	}
	if n < 0 {
		return errors.Newf(errors.ErrorTypeCapacity, "negative element count %d", n)
	}
	need := len(c.data) + n
	if need < 0 || need > MaxCapacity[T]() {
		return errors.Newf(errors.ErrorTypeCapacity,
			"chunk would hold %d elements, maximum is %d", need, MaxCapacity[T]())
	}
	if need <= cap(c.data) {
		return nil
	}
	next := cap(c.data) * 2
	if next < need {
		next = need
	}
	if next > MaxCapacity[T]() {
		next = MaxCapacity[T]()
	}
	grown := make([]T, len(c.data), next)
	copy(grown, c.data)
	c.data = grown
	return nil
}

// ToOwned returns c if it already owns its memory, otherwise a private
// growable copy. This is the copy-on-write path taken whenever a borrowed
// chunk must be mutated, e.g. by a cumulative kernel.
func (c *Chunk[T]) ToOwned() *Chunk[T] {
	if c.owned {
		return c
	}
	data := make([]T, len(c.data))
	copy(data, c.data)
	return &Chunk[T]{data: data, owned: true}
}

// Clone returns an owned deep copy preserving length and capacity.
func (c *Chunk[T]) Clone() *Chunk[T] {
	data := make([]T, len(c.data), cap(c.data))
	copy(data, c.data)
	return &Chunk[T]{data: data, owned: true}
}

// Bytes returns a zero-copy byte view over elements [start, start+count).
// T must not be bool: bool chunks are byte-backed here but bit-packed on
// the wire, so they have no byte-compatible view.
func (c *Chunk[T]) Bytes(start, count int) ([]byte, error) {
	if start < 0 || count < 0 || start+count > len(c.data) {
		return nil, errors.Newf(errors.ErrorTypeIndex,
			"byte view [%d, %d) out of range [0, %d)", start, start+count, len(c.data))
	}
	if count == 0 {
		return nil, nil
	}
	size := Sizeof[T]()
	base := unsafe.Pointer(&c.data[start])
	return unsafe.Slice((*byte)(base), count*size), nil
}
