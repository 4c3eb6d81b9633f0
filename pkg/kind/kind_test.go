package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromoteTable(t *testing.T) {
	tests := []struct {
		a, b, want Kind
	}{
		{Int32, Int32, Int32},
		{Int32, Int64, Int64},
		{Int8, Int16, Int16},
		{Int8, Uint8, Int16},
		{Uint8, Uint16, Uint16},
		{Uint32, Int32, Int64},
		{Float32, Float64, Float64},
		{Float32, Float32, Float32},
		{Int16, Float32, Float32},
		{Int64, Uint64, Invalid},
		{Int64, Float64, Invalid},
		{Uint64, Float32, Invalid},
		{Bool, Int32, Invalid},
		{String, Int32, Invalid},
		{Bool, Bool, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Promote(tt.a, tt.b))
		})
	}
}

func TestPromoteIsSymmetric(t *testing.T) {
	kinds := []Kind{
		Bool, Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64, Float32, Float64, String,
	}
	for _, a := range kinds {
		for _, b := range kinds {
			assert.Equal(t, Promote(a, b), Promote(b, a), "%s vs %s", a, b)
		}
	}
}

func TestPromoteSelfIsIdentityForNumerics(t *testing.T) {
	for _, k := range []Kind{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64} {
		assert.Equal(t, k, Promote(k, k), "%s", k)
	}
}

func TestCapabilities(t *testing.T) {
	assert.True(t, CapabilitiesOf(Int32).Arithmetic)
	assert.True(t, CapabilitiesOf(Int32).Bitwise)
	assert.True(t, CapabilitiesOf(Float64).Arithmetic)
	assert.False(t, CapabilitiesOf(Float64).Bitwise)
	assert.True(t, CapabilitiesOf(Bool).Bitwise)
	assert.False(t, CapabilitiesOf(Bool).Arithmetic)
	assert.False(t, CapabilitiesOf(String).Ordered)
	assert.False(t, CapabilitiesOf(Invalid).Arithmetic)
}

func TestOf(t *testing.T) {
	assert.Equal(t, Bool, Of[bool]())
	assert.Equal(t, Int8, Of[int8]())
	assert.Equal(t, Uint64, Of[uint64]())
	assert.Equal(t, Float32, Of[float32]())
}

func TestSize(t *testing.T) {
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 2, Int16.Size())
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Uint64.Size())
	assert.Equal(t, 0, String.Size())
}
