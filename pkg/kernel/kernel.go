// Package kernel implements the stateless compute kernels: elementwise
// arithmetic and bitwise operators, comparisons, reductions and cumulative
// folds over column containers.
//
// Kernels are generic over the element type and are always invoked with
// already-resolved, equal operand types; heterogeneous operands go through
// kind.Promote at the column-type layer first. Capability checks for the
// type-erased path live in kind.CapabilitiesOf; within this package the
// type constraints enforce the same rules at compile time.
//
// Null propagation is uniform: a result row is valid only when every input
// row it depends on is valid. Comparisons yield a null result bit, never
// false, for a null input.
package kernel

import (
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/errors"
	"github.com/quarrydata/quarry/pkg/kind"
)

// Numeric covers the element kinds with arithmetic capability.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Integer covers the element kinds with bitwise capability (the boolean
// logical variants are defined separately over Container[bool]).
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Elementwise applies fn row-wise over two same-length containers,
// propagating nulls: the result row is valid only when both inputs are.
// The operands may have different chunk layouts; iteration advances in
// runs bounded by both layouts' chunk boundaries.
func Elementwise[T chunk.Element](l, r *column.Container[T], fn func(T, T) T) (*column.Container[T], error) {
	if l.Len() != r.Len() {
		return nil, errors.Newf(errors.ErrorTypeShape,
			"operand lengths differ: %d vs %d", l.Len(), r.Len())
	}
	out, err := column.NewWithChunkCapacity[T](l.ChunkCapacity())
	if err != nil {
		return nil, err
	}
	n := l.Len()
	for row := int64(0); row < n; {
		run, lci, llo, rci, rlo, err := alignedRun(l, r, row)
		if err != nil {
			return nil, err
		}
		lv, rv := l.Values(lci), r.Values(rci)
		lb, rb := l.Validity(lci), r.Validity(rci)
		for k := 0; k < run; k++ {
			if lb.Get(llo+k) && rb.Get(rlo+k) {
				err = out.Append(fn(lv[llo+k], rv[rlo+k]))
			} else {
				err = out.AppendNull()
			}
			if err != nil {
				return nil, err
			}
		}
		row += int64(run)
	}
	return out, nil
}

// alignedRun resolves row in both containers and returns the longest run
// contiguous in each.
func alignedRun[T chunk.Element](l, r *column.Container[T], row int64) (run, lci, llo, rci, rlo int, err error) {
	lrun, err := l.MaxContiguousRun(row)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	rrun, err := r.MaxContiguousRun(row)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	if rrun < lrun {
		lrun = rrun
	}
	lci, llo, err = l.Locate(row)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	rci, rlo, err = r.Locate(row)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	return int(lrun), lci, llo, rci, rlo, nil
}

// ElementwiseScalar applies fn(value, scalar) row-wise. The scalar is
// always valid, so the result validity mirrors the column's.
func ElementwiseScalar[T chunk.Element](c *column.Container[T], scalar T, fn func(T, T) T) (*column.Container[T], error) {
	return mapValid(c, func(v T) T { return fn(v, scalar) })
}

// ElementwiseScalarReverse applies fn(scalar, value) row-wise, for
// non-commutative operators with the scalar on the left.
func ElementwiseScalarReverse[T chunk.Element](c *column.Container[T], scalar T, fn func(T, T) T) (*column.Container[T], error) {
	return mapValid(c, func(v T) T { return fn(scalar, v) })
}

func mapValid[T chunk.Element](c *column.Container[T], fn func(T) T) (*column.Container[T], error) {
	out, err := column.NewWithChunkCapacity[T](c.ChunkCapacity())
	if err != nil {
		return nil, err
	}
	for ci := 0; ci < c.ChunkCount(); ci++ {
		values := c.Values(ci)
		validity := c.Validity(ci)
		for local := range values {
			if validity.Get(local) {
				err = out.Append(fn(values[local]))
			} else {
				err = out.AppendNull()
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Add returns l + r elementwise.
func Add[T Numeric](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a + b })
}

// Subtract returns l - r elementwise.
func Subtract[T Numeric](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a - b })
}

// Multiply returns l * r elementwise.
func Multiply[T Numeric](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a * b })
}

// Divide returns l / r elementwise. Integer divisor columns holding a valid
// zero are rejected before any row is written; float division follows
// IEEE 754 (zero divisors yield Inf or NaN).
func Divide[T Numeric](l, r *column.Container[T]) (*column.Container[T], error) {
	if err := checkZeroDivisors(r); err != nil {
		return nil, err
	}
	return Elementwise(l, r, func(a, b T) T { return a / b })
}

// checkZeroDivisors scans an integer divisor column for valid zero rows.
// Float kinds pass through untouched.
func checkZeroDivisors[T Numeric](c *column.Container[T]) error {
	if !kind.CapabilitiesOf(kind.Of[T]()).Bitwise {
		return nil
	}
	var zero T
	var row int64
	for ci := 0; ci < c.ChunkCount(); ci++ {
		values := c.Values(ci)
		validity := c.Validity(ci)
		for local := range values {
			if validity.Get(local) && values[local] == zero {
				return errors.Newf(errors.ErrorTypeUnsupported,
					"integer division by zero at row %d", row)
			}
			row++
		}
	}
	return nil
}

// AddScalar returns c + s elementwise.
func AddScalar[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	return ElementwiseScalar(c, s, func(a, b T) T { return a + b })
}

// SubtractScalar returns c - s elementwise.
func SubtractScalar[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	return ElementwiseScalar(c, s, func(a, b T) T { return a - b })
}

// SubtractScalarReverse returns s - c elementwise.
func SubtractScalarReverse[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	return ElementwiseScalarReverse(c, s, func(a, b T) T { return a - b })
}

// MultiplyScalar returns c * s elementwise.
func MultiplyScalar[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	return ElementwiseScalar(c, s, func(a, b T) T { return a * b })
}

// DivideScalar returns c / s elementwise. A zero integer scalar is rejected.
func DivideScalar[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	var zero T
	if s == zero && kind.CapabilitiesOf(kind.Of[T]()).Bitwise {
		return nil, errors.New(errors.ErrorTypeUnsupported, "integer division by zero scalar")
	}
	return ElementwiseScalar(c, s, func(a, b T) T { return a / b })
}

// DivideScalarReverse returns s / c elementwise, with the same integer
// zero-divisor pre-check as Divide.
func DivideScalarReverse[T Numeric](c *column.Container[T], s T) (*column.Container[T], error) {
	if err := checkZeroDivisors(c); err != nil {
		return nil, err
	}
	return ElementwiseScalarReverse(c, s, func(a, b T) T { return a / b })
}

// And returns l & r elementwise.
func And[T Integer](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a & b })
}

// Or returns l | r elementwise.
func Or[T Integer](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a | b })
}

// Xor returns l ^ r elementwise.
func Xor[T Integer](l, r *column.Container[T]) (*column.Container[T], error) {
	return Elementwise(l, r, func(a, b T) T { return a ^ b })
}

// ShiftLeft returns c << bits elementwise.
func ShiftLeft[T Integer](c *column.Container[T], bits uint) (*column.Container[T], error) {
	return mapValid(c, func(v T) T { return v << bits })
}

// ShiftRight returns c >> bits elementwise.
func ShiftRight[T Integer](c *column.Container[T], bits uint) (*column.Container[T], error) {
	return mapValid(c, func(v T) T { return v >> bits })
}

// BoolAnd returns l && r elementwise over boolean columns.
func BoolAnd(l, r *column.Container[bool]) (*column.Container[bool], error) {
	return Elementwise(l, r, func(a, b bool) bool { return a && b })
}

// BoolOr returns l || r elementwise over boolean columns.
func BoolOr(l, r *column.Container[bool]) (*column.Container[bool], error) {
	return Elementwise(l, r, func(a, b bool) bool { return a || b })
}

// BoolXor returns l != r elementwise over boolean columns.
func BoolXor(l, r *column.Container[bool]) (*column.Container[bool], error) {
	return Elementwise(l, r, func(a, b bool) bool { return a != b })
}
