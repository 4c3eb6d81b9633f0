package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry/pkg/errors"
)

func TestAppendGrows(t *testing.T) {
	c, err := New[int32](0)
	require.NoError(t, err)

	for i := int32(0); i < 100; i++ {
		require.NoError(t, c.Append(i))
	}
	assert.Equal(t, 100, c.Len())
	assert.GreaterOrEqual(t, c.Cap(), 100)
	assert.Equal(t, int32(42), c.Get(42))
}

func TestSetNeverGrows(t *testing.T) {
	c, err := New[int64](4)
	require.NoError(t, err)
	require.NoError(t, c.Append(1))

	require.NoError(t, c.Set(0, 7))
	assert.Equal(t, int64(7), c.Get(0))

	// Random writes past the populated length fail even with spare capacity.
	err = c.Set(1, 9)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))
}

func TestCapacityCeiling(t *testing.T) {
	_, err := New[int64](MaxCapacity[int64]() + 1)
	require.Error(t, err)
	assert.True(t, errors.IsCapacity(err))

	assert.Equal(t, MaxRegionBytes/8, MaxCapacity[int64]())
	assert.Equal(t, MaxRegionBytes, MaxCapacity[int8]())
}

func TestViewCopyOnWrite(t *testing.T) {
	backing := []int16{10, 20, 30}
	v := NewView(backing)

	assert.False(t, v.Owned())
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 3, v.Cap())
	assert.Equal(t, int16(20), v.Get(1))

	require.Error(t, v.Append(40))
	require.Error(t, v.Set(0, 0))

	owned := v.ToOwned()
	require.True(t, owned.Owned())
	require.NoError(t, owned.Set(0, 99))
	assert.Equal(t, int16(99), owned.Get(0))
	// The caller's memory is untouched.
	assert.Equal(t, int16(10), backing[0])
}

func TestToOwnedIsIdentityForOwned(t *testing.T) {
	c, err := New[float64](2)
	require.NoError(t, err)
	assert.Same(t, c, c.ToOwned())
}

func TestAppendN(t *testing.T) {
	c, err := New[uint8](0)
	require.NoError(t, err)
	require.NoError(t, c.AppendN(7, 10))
	assert.Equal(t, 10, c.Len())
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint8(7), c.Get(i))
	}
}

func TestBytes(t *testing.T) {
	c, err := New[int32](4)
	require.NoError(t, err)
	require.NoError(t, c.Append(1))
	require.NoError(t, c.Append(2))

	b, err := c.Bytes(0, 2)
	require.NoError(t, err)
	require.Len(t, b, 8)
	// Little-endian fixed-width layout.
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, byte(2), b[4])

	_, err = c.Bytes(1, 2)
	require.Error(t, err)
	assert.True(t, errors.IsIndex(err))
}
