// Package column implements the chunked, nullable container backing one
// logical column: an ordered list of (chunk, validity bitmap) pairs
// presenting a single row-indexed sequence with a maintained null count.
package column

import (
	"math"

	"github.com/quarrydata/quarry/pkg/bitmap"
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/errors"
	"github.com/quarrydata/quarry/pkg/kind"
)

// Any is the type-erased view of a container, consumed by the kind-dispatch
// edge (the Arrow bridge and the external column-type layer).
type Any interface {
	Kind() kind.Kind
	Len() int64
	NullCount() int64
	// Chunking geometry, needed to size record batches on export.
	ChunkCount() int
	MaxContiguousRun(start int64) (int64, error)
}

// pair couples one chunk of values with its validity bitmap. The two always
// cover the same rows.
type pair[T chunk.Element] struct {
	values   *chunk.Chunk[T]
	validity *bitmap.Bitmap
}

// Container holds the rows of one logical column. Chunks are allocated at a
// uniform capacity boundary by the append path so row resolution is integer
// division; containers assembled from imported Arrow buffers may be
// non-uniform and fall back to a linear scan.
//
// A container is not safe for concurrent use and backs exactly one column.
type Container[T chunk.Element] struct {
	pairs     []pair[T]
	length    int64
	nullCount int64
	chunkCap  int
	uniform   bool
}

// New creates an empty container whose chunks are allocated at the maximum
// per-chunk capacity for T.
func New[T chunk.Element]() *Container[T] {
	return &Container[T]{chunkCap: chunk.MaxCapacity[T](), uniform: true}
}

// NewWithChunkCapacity creates an empty container with a custom uniform
// chunk capacity. Small capacities are useful in tests to exercise chunk
// boundaries.
func NewWithChunkCapacity[T chunk.Element](chunkCap int) (*Container[T], error) {
	if chunkCap <= 0 || chunkCap > chunk.MaxCapacity[T]() {
		return nil, errors.Newf(errors.ErrorTypeCapacity,
			"chunk capacity %d outside (0, %d]", chunkCap, chunk.MaxCapacity[T]())
	}
	return &Container[T]{chunkCap: chunkCap, uniform: true}, nil
}

// Kind returns the element kind stored by this container.
func (c *Container[T]) Kind() kind.Kind { return kind.Of[T]() }

// Len returns the logical row count.
func (c *Container[T]) Len() int64 { return c.length }

// NullCount returns the running count of null rows. It is maintained on
// every mutation and always equals the number of zero bits across all
// validity bitmaps.
func (c *Container[T]) NullCount() int64 { return c.nullCount }

// ChunkCapacity returns the uniform chunk allocation boundary.
func (c *Container[T]) ChunkCapacity() int { return c.chunkCap }

// ChunkCount returns the number of physical chunks.
func (c *Container[T]) ChunkCount() int { return len(c.pairs) }

// ChunkLen returns the row count of chunk i.
func (c *Container[T]) ChunkLen(i int) int { return c.pairs[i].values.Len() }

// Values returns a read-only view of chunk i's elements.
func (c *Container[T]) Values(i int) []T { return c.pairs[i].values.Values() }

// Validity returns chunk i's validity bitmap. Callers must not mutate it.
func (c *Container[T]) Validity(i int) *bitmap.Bitmap { return c.pairs[i].validity }

// MutableValues materializes chunk i as owned (copy-on-write if it was a
// borrowed Arrow view) and returns its elements for in-place mutation.
func (c *Container[T]) MutableValues(i int) []T {
	c.pairs[i].values = c.pairs[i].values.ToOwned()
	return c.pairs[i].values.Values()
}

// mutableValidity materializes chunk i's bitmap as owned.
func (c *Container[T]) mutableValidity(i int) *bitmap.Bitmap {
	c.pairs[i].validity = c.pairs[i].validity.ToOwned()
	return c.pairs[i].validity
}

// checkedMul multiplies two non-negative int64s, failing on overflow.
// Row-offset arithmetic must never wrap silently for pathologically large
// columns.
func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, errors.Newf(errors.ErrorTypeCapacity,
			"row offset %d*%d overflows int64", a, b)
	}
	return a * b, nil
}

// Locate resolves a logical row to (chunk index, local index). Uniformly
// chunked containers resolve by division; imported non-uniform layouts scan.
func (c *Container[T]) Locate(row int64) (int, int, error) {
	if row < 0 || row >= c.length {
		return 0, 0, errors.Newf(errors.ErrorTypeIndex,
			"row %d out of range [0, %d)", row, c.length)
	}
	if c.uniform {
		ci := int(row / int64(c.chunkCap))
		local := int(row % int64(c.chunkCap))
		if _, err := checkedMul(int64(ci), int64(c.chunkCap)); err != nil {
			return 0, 0, err
		}
		return ci, local, nil
	}
	var start int64
	for i := range c.pairs {
		n := int64(c.pairs[i].values.Len())
		if row < start+n {
			return i, int(row - start), nil
		}
		start += n
	}
	return 0, 0, errors.Newf(errors.ErrorTypeIndex,
		"row %d beyond chunked extent %d", row, c.length)
}

// Get returns the value at row and whether it is valid. A clear validity
// bit yields (zero, false).
func (c *Container[T]) Get(row int64) (T, bool, error) {
	var zero T
	ci, local, err := c.Locate(row)
	if err != nil {
		return zero, false, err
	}
	p := c.pairs[ci]
	if !p.validity.Get(local) {
		return zero, false, nil
	}
	return p.values.Get(local), true, nil
}

// Set writes a valid value at row, adjusting the null count if the row was
// previously null. Borrowed chunks are materialized first.
func (c *Container[T]) Set(row int64, v T) error {
	ci, local, err := c.Locate(row)
	if err != nil {
		return err
	}
	c.pairs[ci].values = c.pairs[ci].values.ToOwned()
	if err := c.pairs[ci].values.Set(local, v); err != nil {
		return err
	}
	c.nullCount += int64(c.mutableValidity(ci).Set(local, true))
	return nil
}

// SetNull clears the value at row to the zero bit pattern and marks it
// null, adjusting the null count if the row was previously valid.
func (c *Container[T]) SetNull(row int64) error {
	var zero T
	ci, local, err := c.Locate(row)
	if err != nil {
		return err
	}
	c.pairs[ci].values = c.pairs[ci].values.ToOwned()
	if err := c.pairs[ci].values.Set(local, zero); err != nil {
		return err
	}
	c.nullCount += int64(c.mutableValidity(ci).Set(local, false))
	return nil
}

// Append adds one valid value.
func (c *Container[T]) Append(v T) error {
	return c.appendOne(v, true)
}

// AppendNull adds one null row.
func (c *Container[T]) AppendNull() error {
	var zero T
	return c.appendOne(zero, false)
}

func (c *Container[T]) appendOne(v T, valid bool) error {
	p, err := c.writableTail()
	if err != nil {
		return err
	}
	local := p.values.Len()
	if err := p.values.Append(v); err != nil {
		return err
	}
	if err := p.validity.Grow(local + 1); err != nil {
		return err
	}
	if valid {
		p.validity.Set(local, true)
	} else {
		c.nullCount++
	}
	c.length++
	return nil
}

// AppendMany adds count copies of v, all valid. The run may span multiple
// chunk boundaries.
func (c *Container[T]) AppendMany(v T, count int64) error {
	return c.appendRun(v, true, count)
}

// AppendNulls adds count null rows.
func (c *Container[T]) AppendNulls(count int64) error {
	var zero T
	return c.appendRun(zero, false, count)
}

func (c *Container[T]) appendRun(v T, valid bool, count int64) error {
	if count < 0 {
		return errors.Newf(errors.ErrorTypeCapacity, "negative row count %d", count)
	}
	for count > 0 {
		p, err := c.writableTail()
		if err != nil {
			return err
		}
		local := p.values.Len()
		room := int64(c.chunkCap - local)
		n := count
		if n > room {
			n = room
		}
		if err := p.values.AppendN(v, int(n)); err != nil {
			return err
		}
		if err := p.validity.Grow(local + int(n)); err != nil {
			return err
		}
		if valid {
			p.validity.SetRange(local, int(n), true)
		} else {
			c.nullCount += n
		}
		c.length += n
		count -= n
	}
	return nil
}

// writableTail returns the last pair with room to append, materializing a
// borrowed tail and allocating a fresh chunk at the uniform boundary when
// the tail is full.
func (c *Container[T]) writableTail() (*pair[T], error) {
	if n := len(c.pairs); n > 0 {
		p := &c.pairs[n-1]
		if p.values.Len() < c.chunkCap {
			if !p.values.Owned() {
				p.values = p.values.ToOwned()
			}
			if !p.validity.Owned() {
				p.validity = p.validity.ToOwned()
			}
			return p, nil
		}
	}
	values, err := chunk.New[T](0)
	if err != nil {
		return nil, err
	}
	c.pairs = append(c.pairs, pair[T]{values: values, validity: bitmap.New(0)})
	c.recomputeUniform()
	return &c.pairs[len(c.pairs)-1], nil
}

// recomputeUniform re-derives whether div/mod row resolution is valid:
// every chunk except the last sits exactly on the capacity boundary, and no
// chunk (imported views included) exceeds it.
func (c *Container[T]) recomputeUniform() {
	c.uniform = true
	for i, p := range c.pairs {
		n := p.values.Len()
		if n > c.chunkCap || (i < len(c.pairs)-1 && n != c.chunkCap) {
			c.uniform = false
			return
		}
	}
}

// Resize grows the container to newLength rows, padding with nulls.
// Shrinking is not supported and fails.
func (c *Container[T]) Resize(newLength int64) error {
	if newLength < c.length {
		return errors.Newf(errors.ErrorTypeUnsupported,
			"resize from %d to %d rows would shrink", c.length, newLength)
	}
	return c.AppendNulls(newLength - c.length)
}

// Clone returns a deep copy preserving chunk boundaries and ownership of
// every byte.
func (c *Container[T]) Clone() *Container[T] {
	out := &Container[T]{
		pairs:     make([]pair[T], len(c.pairs)),
		length:    c.length,
		nullCount: c.nullCount,
		chunkCap:  c.chunkCap,
		uniform:   c.uniform,
	}
	for i, p := range c.pairs {
		out.pairs[i] = pair[T]{values: p.values.Clone(), validity: p.validity.Clone()}
	}
	return out
}

// AppendView attaches caller-owned memory as a borrowed (zero-copy) chunk.
// nullCount must equal the number of clear bits in validity over
// len(values) rows. Used by the Arrow import path.
func (c *Container[T]) AppendView(values []T, validity *bitmap.Bitmap, nullCount int64) error {
	if len(values) > chunk.MaxCapacity[T]() {
		return errors.Newf(errors.ErrorTypeCapacity,
			"view of %d elements exceeds chunk maximum %d", len(values), chunk.MaxCapacity[T]())
	}
	if validity.BitCapacity() < len(values) {
		return errors.Newf(errors.ErrorTypeShape,
			"validity bitmap addresses %d rows, chunk has %d", validity.BitCapacity(), len(values))
	}
	c.pairs = append(c.pairs, pair[T]{values: chunk.NewView(values), validity: validity})
	c.length += int64(len(values))
	c.nullCount += nullCount
	c.recomputeUniform()
	return nil
}

// MaxContiguousRun returns how many rows starting at start lie within one
// physical chunk. Export sizes record batches with it so a batch never
// splits a chunk.
func (c *Container[T]) MaxContiguousRun(start int64) (int64, error) {
	ci, local, err := c.Locate(start)
	if err != nil {
		return 0, err
	}
	return int64(c.pairs[ci].values.Len() - local), nil
}

// ValueBytes returns a zero-copy byte view of rows [start, start+rows),
// which must lie within one chunk.
func (c *Container[T]) ValueBytes(start, rows int64) ([]byte, error) {
	ci, local, err := c.Locate(start)
	if err != nil {
		return nil, err
	}
	run := int64(c.pairs[ci].values.Len() - local)
	if rows < 0 || rows > run {
		return nil, errors.Newf(errors.ErrorTypeIndex,
			"%d rows requested but only %d are contiguous from row %d", rows, run, start)
	}
	return c.pairs[ci].values.Bytes(local, int(rows))
}

// ValidityBytes returns a zero-copy byte view of the validity bits for rows
// [start, start+rows). The range must lie within one chunk and start on a
// byte boundary.
func (c *Container[T]) ValidityBytes(start, rows int64) ([]byte, error) {
	ci, local, err := c.Locate(start)
	if err != nil {
		return nil, err
	}
	run := int64(c.pairs[ci].values.Len() - local)
	if rows < 0 || rows > run {
		return nil, errors.Newf(errors.ErrorTypeIndex,
			"%d rows requested but only %d are contiguous from row %d", rows, run, start)
	}
	if local%8 != 0 {
		return nil, errors.Newf(errors.ErrorTypeShape,
			"validity view at local row %d does not start on a byte boundary", local)
	}
	bits := c.pairs[ci].validity.Bytes()
	return bits[local/8 : (local+int(rows)+7)/8], nil
}

// NullCountRange counts null rows in [start, start+rows) within one chunk.
func (c *Container[T]) NullCountRange(start, rows int64) (int64, error) {
	ci, local, err := c.Locate(start)
	if err != nil {
		return 0, err
	}
	run := int64(c.pairs[ci].values.Len() - local)
	if rows < 0 || rows > run {
		return 0, errors.Newf(errors.ErrorTypeIndex,
			"%d rows requested but only %d are contiguous from row %d", rows, run, start)
	}
	valid := c.pairs[ci].validity.CountOnesRange(local, int(rows))
	return rows - int64(valid), nil
}
