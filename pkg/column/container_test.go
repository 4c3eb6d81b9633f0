package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry/pkg/bitmap"
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/errors"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.Append(1))
	require.NoError(t, c.AppendNull())
	require.NoError(t, c.Append(3))

	assert.Equal(t, int64(3), c.Len())
	assert.Equal(t, int64(1), c.NullCount())

	v, valid, err := c.Get(0)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, int32(1), v)

	_, valid, err = c.Get(1)
	require.NoError(t, err)
	assert.False(t, valid)

	// Overwriting a null with a value decrements the null count.
	require.NoError(t, c.Set(1, 2))
	assert.Equal(t, int64(0), c.NullCount())
	v, valid, err = c.Get(1)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, int32(2), v)

	// Nulling a valid row increments it again.
	require.NoError(t, c.SetNull(0))
	assert.Equal(t, int64(1), c.NullCount())
	_, valid, err = c.Get(0)
	require.NoError(t, err)
	assert.False(t, valid)

	_, _, err = c.Get(3)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))
}

func TestNullCountMatchesBitmaps(t *testing.T) {
	c, err := NewWithChunkCapacity[int16](3)
	require.NoError(t, err)

	require.NoError(t, c.Append(1))
	require.NoError(t, c.AppendNulls(4))
	require.NoError(t, c.AppendMany(9, 5))
	require.NoError(t, c.SetNull(7))
	require.NoError(t, c.Set(2, 5))

	var zeros int64
	for ci := 0; ci < c.ChunkCount(); ci++ {
		n := c.ChunkLen(ci)
		zeros += int64(n - c.Validity(ci).CountOnes(n))
	}
	assert.Equal(t, zeros, c.NullCount())
}

func TestChunkBoundaryResolution(t *testing.T) {
	c, err := NewWithChunkCapacity[int32](4)
	require.NoError(t, err)
	for i := int32(0); i < 10; i++ {
		require.NoError(t, c.Append(i * 10))
	}

	// 10 rows at capacity 4 occupy ceil(10/4) = 3 chunks.
	assert.Equal(t, 3, c.ChunkCount())
	assert.Equal(t, 4, c.ChunkLen(0))
	assert.Equal(t, 4, c.ChunkLen(1))
	assert.Equal(t, 2, c.ChunkLen(2))

	ci, local, err := c.Locate(5)
	require.NoError(t, err)
	assert.Equal(t, 1, ci)
	assert.Equal(t, 1, local)

	v, valid, err := c.Get(5)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, int32(50), v)

	require.NoError(t, c.Set(9, -1))
	v, _, err = c.Get(9)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), v)
}

func TestAppendManySpansChunks(t *testing.T) {
	c, err := NewWithChunkCapacity[uint8](4)
	require.NoError(t, err)
	require.NoError(t, c.Append(1))
	require.NoError(t, c.AppendMany(7, 9))

	assert.Equal(t, int64(10), c.Len())
	assert.Equal(t, 3, c.ChunkCount())
	for row := int64(1); row < 10; row++ {
		v, valid, err := c.Get(row)
		require.NoError(t, err)
		assert.True(t, valid)
		assert.Equal(t, uint8(7), v)
	}
}

func TestResize(t *testing.T) {
	c := New[float64]()
	require.NoError(t, c.Append(1.5))

	require.NoError(t, c.Resize(4))
	assert.Equal(t, int64(4), c.Len())
	assert.Equal(t, int64(3), c.NullCount())

	_, valid, err := c.Get(3)
	require.NoError(t, err)
	assert.False(t, valid)

	err = c.Resize(2)
	require.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))
	assert.Equal(t, int64(4), c.Len())
}

func TestGather(t *testing.T) {
	c, err := NewWithChunkCapacity[int32](2)
	require.NoError(t, err)
	require.NoError(t, c.Append(1))
	require.NoError(t, c.Append(2))
	require.NoError(t, c.Append(3))
	assert.Equal(t, 2, c.ChunkCount())

	indices := New[int64]()
	require.NoError(t, indices.Append(2))
	require.NoError(t, indices.Append(0))
	require.NoError(t, indices.Append(1))

	got, err := c.Gather(indices, false)
	require.NoError(t, err)
	assertValues(t, got, []int32{3, 1, 2})

	// invert reads the index sequence back to front.
	got, err = c.Gather(indices, true)
	require.NoError(t, err)
	assertValues(t, got, []int32{2, 1, 3})
}

func TestGatherNullIndexYieldsNull(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.Append(10))
	require.NoError(t, c.Append(20))

	indices := New[int64]()
	require.NoError(t, indices.Append(1))
	require.NoError(t, indices.AppendNull())

	got, err := c.Gather(indices, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Len())
	assert.Equal(t, int64(1), got.NullCount())

	v, valid, err := got.Get(0)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, int32(20), v)

	_, valid, err = got.Get(1)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestGatherRejectsBadIndexBeforeBuilding(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.Append(10))

	indices := New[int64]()
	require.NoError(t, indices.Append(0))
	require.NoError(t, indices.Append(5))

	_, err := c.Gather(indices, false)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))
}

func TestGatherNullSourceRowStaysNull(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.AppendNull())
	require.NoError(t, c.Append(5))

	indices := New[int64]()
	require.NoError(t, indices.Append(0))

	got, err := c.Gather(indices, false)
	require.NoError(t, err)
	_, valid, err := got.Get(0)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestClonePreservesChunkBoundaries(t *testing.T) {
	c, err := NewWithChunkCapacity[int32](2)
	require.NoError(t, err)
	require.NoError(t, c.Append(1))
	require.NoError(t, c.AppendNull())
	require.NoError(t, c.Append(3))

	clone := c.Clone()
	assert.Equal(t, c.Len(), clone.Len())
	assert.Equal(t, c.NullCount(), clone.NullCount())
	assert.Equal(t, c.ChunkCount(), clone.ChunkCount())

	// Mutating the clone leaves the original alone.
	require.NoError(t, clone.Set(0, 99))
	v, _, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestCopyOnWriteForBorrowedChunks(t *testing.T) {
	backing := []int32{1, 2, 3}
	vb := bitmap.New(3)
	vb.SetRange(0, 3, true)

	c := New[int32]()
	require.NoError(t, c.AppendView(backing, vb, 0))

	require.NoError(t, c.Set(0, 42))
	v, _, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
	// Caller-owned memory is never written through.
	assert.Equal(t, int32(1), backing[0])
}

func TestNonUniformLayoutFallsBackToScan(t *testing.T) {
	vb1 := bitmap.New(3)
	vb1.SetRange(0, 3, true)
	vb2 := bitmap.New(2)
	vb2.SetRange(0, 2, true)

	c := New[int64]()
	require.NoError(t, c.AppendView([]int64{1, 2, 3}, vb1, 0))
	require.NoError(t, c.AppendView([]int64{4, 5}, vb2, 0))

	for row := int64(0); row < 5; row++ {
		v, valid, err := c.Get(row)
		require.NoError(t, err)
		assert.True(t, valid)
		assert.Equal(t, row+1, v)
	}
}

func TestOversizedViewDisablesDivModResolution(t *testing.T) {
	c, err := NewWithChunkCapacity[int64](2)
	require.NoError(t, err)

	vb := bitmap.New(5)
	vb.SetRange(0, 5, true)
	require.NoError(t, c.AppendView([]int64{1, 2, 3, 4, 5}, vb, 0))

	// A borrowed view longer than the uniform capacity must resolve by
	// scanning, not by div/mod against the capacity.
	for row := int64(0); row < 5; row++ {
		v, valid, err := c.Get(row)
		require.NoError(t, err)
		require.True(t, valid)
		assert.Equal(t, row+1, v)
	}

	_, _, err = c.Get(5)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))

	// Appends after the oversized view still land correctly.
	require.NoError(t, c.Append(6))
	v, valid, err := c.Get(5)
	require.NoError(t, err)
	require.True(t, valid)
	assert.Equal(t, int64(6), v)
}

func TestMaxContiguousRunAndByteViews(t *testing.T) {
	c, err := NewWithChunkCapacity[int32](4)
	require.NoError(t, err)
	for i := int32(0); i < 6; i++ {
		require.NoError(t, c.Append(i))
	}

	run, err := c.MaxContiguousRun(0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), run)

	run, err = c.MaxContiguousRun(5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), run)

	b, err := c.ValueBytes(0, 4)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	_, err = c.ValueBytes(2, 3)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))

	vb, err := c.ValidityBytes(0, 4)
	require.NoError(t, err)
	assert.Len(t, vb, 1)

	_, err = c.ValidityBytes(1, 2)
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))
}

func TestGroupIndices(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.Append(5))
	require.NoError(t, c.Append(7))
	require.NoError(t, c.AppendNull())
	require.NoError(t, c.Append(5))

	groups, nulls := c.GroupIndices()
	assert.Equal(t, []int64{0, 3}, groups[5])
	assert.Equal(t, []int64{1}, groups[7])
	assert.Equal(t, []int64{2}, nulls)
}

func TestFillNulls(t *testing.T) {
	c := New[int32]()
	require.NoError(t, c.Append(1))
	require.NoError(t, c.AppendNull())
	require.NoError(t, c.AppendNull())

	c.FillNulls(-1)
	assert.Equal(t, int64(0), c.NullCount())
	assertValues(t, c, []int32{1, -1, -1})
}

func assertValues[T chunk.Element](t *testing.T, c *Container[T], want []T) {
	t.Helper()
	require.Equal(t, int64(len(want)), c.Len())
	for i, w := range want {
		v, valid, err := c.Get(int64(i))
		require.NoError(t, err)
		require.True(t, valid, "row %d unexpectedly null", i)
		assert.Equal(t, w, v, "row %d", i)
	}
}
