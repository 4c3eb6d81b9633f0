// Package bitmap implements the Arrow-compatible validity bitmap: one bit
// per row, LSB-first within each byte, 1 = valid, 0 = null.
package bitmap

import (
	"github.com/quarrydata/quarry/pkg/errors"
)

// popcount holds the number of set bits for every possible byte value.
var popcount [256]uint8

func init() {
	for i := 1; i < 256; i++ {
		popcount[i] = popcount[i>>1] + uint8(i&1)
	}
}

// Bitmap tracks validity for a run of rows. A bitmap is either owned
// (private, mutable) or borrowed (a zero-copy view over memory supplied by
// an Arrow import). Mutating a borrowed bitmap requires ToOwned first.
//
// The bitmap does not track aggregate null counts itself: Set returns the
// delta so the owning container can maintain its running counter.
type Bitmap struct {
	bits  []byte
	owned bool
}

// New allocates an owned bitmap with capacity for nbits rows, all bits
// clear (null).
func New(nbits int) *Bitmap {
	return &Bitmap{
		bits:  make([]byte, bytesFor(nbits)),
		owned: true,
	}
}

// NewView wraps caller-supplied bytes as a borrowed, immutable bitmap.
// The bytes are not copied.
func NewView(bits []byte) *Bitmap {
	return &Bitmap{bits: bits}
}

// bytesFor returns the number of bytes needed to hold nbits bits.
func bytesFor(nbits int) int {
	return (nbits + 7) / 8
}

// Owned reports whether the bitmap owns its backing bytes.
func (b *Bitmap) Owned() bool { return b.owned }

// Bytes returns the backing bytes. Callers must not mutate a borrowed
// bitmap's bytes.
func (b *Bitmap) Bytes() []byte { return b.bits }

// BitCapacity returns the number of bits the backing bytes can address.
func (b *Bitmap) BitCapacity() int { return len(b.bits) * 8 }

// Get reports whether bit i is set (row i is valid).
func (b *Bitmap) Get(i int) bool {
	if i < 0 || i>>3 >= len(b.bits) {
		panic("bitmap: bit index out of range")
	}
	return b.bits[i>>3]&(1<<uint(i&7)) != 0
}

// Set writes bit i and returns the null-count delta for the caller's
// accumulator: +1 when a valid row goes null, -1 when a null row goes
// valid, 0 otherwise. The bitmap must be owned.
func (b *Bitmap) Set(i int, valid bool) int {
	if i < 0 || i>>3 >= len(b.bits) {
		panic("bitmap: bit index out of range")
	}
	if !b.owned {
		panic("bitmap: set on borrowed bitmap")
	}
	mask := byte(1) << uint(i&7)
	was := b.bits[i>>3]&mask != 0
	if valid {
		b.bits[i>>3] |= mask
	} else {
		b.bits[i>>3] &^= mask
	}
	switch {
	case was && !valid:
		return 1
	case !was && valid:
		return -1
	default:
		return 0
	}
}

// SetRange writes bits [start, start+count) to valid. Whole bytes inside
// the range are filled directly; the ragged head and tail fall back to
// bit-by-bit writes. Returns the null-count delta.
func (b *Bitmap) SetRange(start, count int, valid bool) int {
	if count < 0 || start < 0 || (count > 0 && (start+count-1)>>3 >= len(b.bits)) {
		panic("bitmap: bit range out of range")
	}
	if !b.owned {
		panic("bitmap: set on borrowed bitmap")
	}
	delta := 0
	i := start
	end := start + count

	// Ragged head up to the first byte boundary.
	for i < end && i&7 != 0 {
		delta += b.Set(i, valid)
		i++
	}

	// Whole-byte fill.
	var fill byte
	if valid {
		fill = 0xFF
	}
	for ; end-i >= 8; i += 8 {
		was := int(popcount[b.bits[i>>3]])
		b.bits[i>>3] = fill
		if valid {
			delta -= 8 - was
		} else {
			delta += was
		}
	}

	// Ragged tail.
	for ; i < end; i++ {
		delta += b.Set(i, valid)
	}
	return delta
}

// CountOnes returns the population count over the first nbits bits:
// byte-wise table lookups for whole bytes, a bit loop for the trailing
// partial byte.
func (b *Bitmap) CountOnes(nbits int) int {
	if nbits < 0 || nbits > len(b.bits)*8 {
		panic("bitmap: count length out of range")
	}
	n := 0
	whole := nbits >> 3
	for _, by := range b.bits[:whole] {
		n += int(popcount[by])
	}
	for i := whole << 3; i < nbits; i++ {
		if b.bits[i>>3]&(1<<uint(i&7)) != 0 {
			n++
		}
	}
	return n
}

// CountOnesRange returns the population count over bits [start, start+count).
func (b *Bitmap) CountOnesRange(start, count int) int {
	if start < 0 || count < 0 || start+count > len(b.bits)*8 {
		panic("bitmap: count range out of range")
	}
	n := 0
	i := start
	end := start + count
	for i < end && i&7 != 0 {
		if b.bits[i>>3]&(1<<uint(i&7)) != 0 {
			n++
		}
		i++
	}
	for ; end-i >= 8; i += 8 {
		n += int(popcount[b.bits[i>>3]])
	}
	for ; i < end; i++ {
		if b.bits[i>>3]&(1<<uint(i&7)) != 0 {
			n++
		}
	}
	return n
}

// ToOwned returns b if it is already owned, otherwise a private mutable
// copy of the borrowed bytes.
func (b *Bitmap) ToOwned() *Bitmap {
	if b.owned {
		return b
	}
	bits := make([]byte, len(b.bits))
	copy(bits, b.bits)
	return &Bitmap{bits: bits, owned: true}
}

// Clone returns an owned deep copy.
func (b *Bitmap) Clone() *Bitmap {
	bits := make([]byte, len(b.bits))
	copy(bits, b.bits)
	return &Bitmap{bits: bits, owned: true}
}

// Grow reallocates the backing bytes to address at least nbits bits,
// preserving existing bits. New bits are clear (null). The bitmap must
// be owned.
func (b *Bitmap) Grow(nbits int) error {
	if !b.owned {
		return errors.New(errors.ErrorTypeInternal, "grow on borrowed bitmap")
	}
	need := bytesFor(nbits)
	if need <= len(b.bits) {
		return nil
	}
	next := len(b.bits) * 2
	if next < need {
		next = need
	}
	bits := make([]byte, next)
	copy(bits, b.bits)
	b.bits = bits
	return nil
}
