package kernel

import (
	"iter"

	"github.com/quarrydata/quarry/pkg/column"
)

// Sum folds addition left-to-right over all valid rows, seeded with the
// additive identity. An all-null column sums to zero.
func Sum[T Numeric](c *column.Container[T]) T {
	var acc T
	foldValid(c, func(v T) { acc += v })
	return acc
}

// Product folds multiplication left-to-right over all valid rows, seeded
// with the multiplicative identity. An all-null column multiplies to one.
func Product[T Numeric](c *column.Container[T]) T {
	acc := T(1)
	foldValid(c, func(v T) { acc *= v })
	return acc
}

// Min returns the smallest valid value. ok is false when the column holds
// no valid rows; that case is distinct from a numeric zero.
func Min[T Numeric](c *column.Container[T]) (T, bool) {
	var acc T
	seeded := false
	foldValid(c, func(v T) {
		if !seeded || v < acc {
			acc = v
			seeded = true
		}
	})
	return acc, seeded
}

// Max returns the largest valid value. ok is false when the column holds
// no valid rows.
func Max[T Numeric](c *column.Container[T]) (T, bool) {
	var acc T
	seeded := false
	foldValid(c, func(v T) {
		if !seeded || v > acc {
			acc = v
			seeded = true
		}
	})
	return acc, seeded
}

// foldValid walks every chunk in order, invoking fn on each valid row.
func foldValid[T Numeric](c *column.Container[T], fn func(T)) {
	for ci := 0; ci < c.ChunkCount(); ci++ {
		values := c.Values(ci)
		validity := c.Validity(ci)
		for local := range values {
			if validity.Get(local) {
				fn(values[local])
			}
		}
	}
}

// SumRows sums the valid rows named by a lazy, ordered index sequence. The
// sequence need not be sorted or materialized; each index resolves through
// the same chunk arithmetic as Get. An out-of-range index fails the call.
func SumRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) (T, error) {
	var acc T
	err := foldRows(c, rows, func(v T) { acc += v })
	return acc, err
}

// ProductRows multiplies the valid rows named by the index sequence.
func ProductRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) (T, error) {
	acc := T(1)
	err := foldRows(c, rows, func(v T) { acc *= v })
	return acc, err
}

// MinRows returns the smallest valid value among the named rows; ok is
// false when none of them is valid.
func MinRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) (T, bool, error) {
	var acc T
	seeded := false
	err := foldRows(c, rows, func(v T) {
		if !seeded || v < acc {
			acc = v
			seeded = true
		}
	})
	return acc, seeded, err
}

// MaxRows returns the largest valid value among the named rows; ok is false
// when none of them is valid.
func MaxRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) (T, bool, error) {
	var acc T
	seeded := false
	err := foldRows(c, rows, func(v T) {
		if !seeded || v > acc {
			acc = v
			seeded = true
		}
	})
	return acc, seeded, err
}

func foldRows[T Numeric](c *column.Container[T], rows iter.Seq[int64], fn func(T)) error {
	for row := range rows {
		v, valid, err := c.Get(row)
		if err != nil {
			return err
		}
		if valid {
			fn(v)
		}
	}
	return nil
}
