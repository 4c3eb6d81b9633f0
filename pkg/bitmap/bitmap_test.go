package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	bm := New(16)

	for i := 0; i < 16; i++ {
		assert.False(t, bm.Get(i))
	}

	delta := bm.Set(3, true)
	assert.Equal(t, -1, delta)
	assert.True(t, bm.Get(3))

	// Setting the same value again is a no-op for the counter.
	delta = bm.Set(3, true)
	assert.Equal(t, 0, delta)

	delta = bm.Set(3, false)
	assert.Equal(t, 1, delta)
	assert.False(t, bm.Get(3))
}

func TestSetRange(t *testing.T) {
	tests := []struct {
		name  string
		nbits int
		start int
		count int
	}{
		{name: "byte aligned", nbits: 32, start: 8, count: 16},
		{name: "ragged head", nbits: 32, start: 3, count: 13},
		{name: "ragged tail", nbits: 32, start: 0, count: 11},
		{name: "within one byte", nbits: 16, start: 2, count: 4},
		{name: "empty", nbits: 16, start: 5, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := New(tt.nbits)
			delta := bm.SetRange(tt.start, tt.count, true)
			assert.Equal(t, -tt.count, delta)

			for i := 0; i < tt.nbits; i++ {
				want := i >= tt.start && i < tt.start+tt.count
				assert.Equal(t, want, bm.Get(i), "bit %d", i)
			}
			assert.Equal(t, tt.count, bm.CountOnes(tt.nbits))
		})
	}
}

func TestCountOnes(t *testing.T) {
	bm := New(24)
	bm.Set(0, true)
	bm.Set(7, true)
	bm.Set(8, true)
	bm.Set(17, true)

	assert.Equal(t, 0, bm.CountOnes(0))
	assert.Equal(t, 1, bm.CountOnes(1))
	assert.Equal(t, 2, bm.CountOnes(8))
	assert.Equal(t, 3, bm.CountOnes(9))
	assert.Equal(t, 4, bm.CountOnes(24))
}

func TestCountOnesRange(t *testing.T) {
	bm := New(32)
	bm.SetRange(4, 20, true)

	assert.Equal(t, 20, bm.CountOnesRange(0, 32))
	assert.Equal(t, 20, bm.CountOnesRange(4, 20))
	assert.Equal(t, 4, bm.CountOnesRange(0, 8))
	assert.Equal(t, 0, bm.CountOnesRange(24, 8))
}

func TestArrowBitOrder(t *testing.T) {
	// LSB-first within each byte: bit 0 is the least significant bit.
	bm := New(8)
	bm.Set(0, true)
	bm.Set(2, true)
	assert.Equal(t, byte(0b00000101), bm.Bytes()[0])
}

func TestViewIsImmutable(t *testing.T) {
	raw := []byte{0xFF, 0x00}
	bm := NewView(raw)

	assert.False(t, bm.Owned())
	assert.True(t, bm.Get(7))
	assert.False(t, bm.Get(8))
	assert.Panics(t, func() { bm.Set(0, false) })

	owned := bm.ToOwned()
	require.True(t, owned.Owned())
	owned.Set(0, false)
	assert.False(t, owned.Get(0))
	// The original view is untouched.
	assert.True(t, bm.Get(0))
}

func TestGrowPreservesBits(t *testing.T) {
	bm := New(4)
	bm.Set(1, true)
	require.NoError(t, bm.Grow(100))
	assert.True(t, bm.Get(1))
	assert.False(t, bm.Get(99))
	assert.GreaterOrEqual(t, bm.BitCapacity(), 100)
}

func TestBoundsChecks(t *testing.T) {
	bm := New(8)
	assert.Panics(t, func() { bm.Get(8) })
	assert.Panics(t, func() { bm.Get(-1) })
	assert.Panics(t, func() { bm.Set(8, true) })
	assert.Panics(t, func() { bm.SetRange(4, 8, true) })
	assert.Panics(t, func() { bm.CountOnes(9) })
}
