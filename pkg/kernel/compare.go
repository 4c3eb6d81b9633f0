package kernel

import (
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/errors"
)

// Compare applies fn row-wise over two same-length containers and produces
// a boolean column. A null on either side yields a null result bit, never
// false.
func Compare[T chunk.Element](l, r *column.Container[T], fn func(T, T) bool) (*column.Container[bool], error) {
	if l.Len() != r.Len() {
		return nil, errors.Newf(errors.ErrorTypeShape,
			"operand lengths differ: %d vs %d", l.Len(), r.Len())
	}
	out := column.New[bool]()
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

// CompareScalar applies fn(value, scalar) row-wise into a boolean column,
// with the same null semantics as Compare.
func CompareScalar[T chunk.Element](c *column.Container[T], scalar T, fn func(T, T) bool) (*column.Container[bool], error) {
	out := column.New[bool]()
	for ci := 0; ci < c.ChunkCount(); ci++ {
		values := c.Values(ci)
		validity := c.Validity(ci)
		for local := range values {
			var err error
			if validity.Get(local) {
				err = out.Append(fn(values[local], scalar))
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

// Equal returns l == r elementwise.
func Equal[T chunk.Element](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a == b })
}

// NotEqual returns l != r elementwise.
func NotEqual[T chunk.Element](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a != b })
}

// Less returns l < r elementwise.
func Less[T Numeric](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a < b })
}

// LessEqual returns l <= r elementwise.
func LessEqual[T Numeric](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a <= b })
}

// Greater returns l > r elementwise.
func Greater[T Numeric](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a > b })
}

// GreaterEqual returns l >= r elementwise.
func GreaterEqual[T Numeric](l, r *column.Container[T]) (*column.Container[bool], error) {
	return Compare(l, r, func(a, b T) bool { return a >= b })
}
