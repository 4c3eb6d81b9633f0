package kernel

import (
	"iter"

	"github.com/quarrydata/quarry/pkg/column"
)

// Cumulative kernels write the running accumulator back into each valid
// cell in place. Null cells are skipped, left untouched, and do not reset
// the accumulator. Mutation goes through the container's copy-on-write
// path, so running a cumulative kernel over an Arrow-imported column
// allocates a private copy of each touched chunk.
//
// The fold is inherently sequential: each chunk's accumulator seeds from
// the previous chunk's final value.

// CumulativeSum replaces each valid cell with the running sum.
func CumulativeSum[T Numeric](c *column.Container[T]) {
	cumulate(c, func(a, b T) T { return a + b })
}

// CumulativeProduct replaces each valid cell with the running product.
func CumulativeProduct[T Numeric](c *column.Container[T]) {
	cumulate(c, func(a, b T) T { return a * b })
}

// CumulativeMin replaces each valid cell with the running minimum.
func CumulativeMin[T Numeric](c *column.Container[T]) {
	cumulate(c, func(a, b T) T {
		if b < a {
			return b
		}
		return a
	})
}

// CumulativeMax replaces each valid cell with the running maximum.
func CumulativeMax[T Numeric](c *column.Container[T]) {
	cumulate(c, func(a, b T) T {
		if b > a {
			return b
		}
		return a
	})
}

// cumulate folds fn left-to-right across all chunks, seeding from the first
// valid element.
func cumulate[T Numeric](c *column.Container[T], fn func(T, T) T) {
	var acc T
	seeded := false
	for ci := 0; ci < c.ChunkCount(); ci++ {
		validity := c.Validity(ci)
		n := len(c.Values(ci))
		if validity.CountOnes(n) == 0 {
			continue
		}
		values := c.MutableValues(ci)
		for local := 0; local < n; local++ {
			if !validity.Get(local) {
				continue
			}
			if seeded {
				acc = fn(acc, values[local])
			} else {
				acc = values[local]
				seeded = true
			}
			values[local] = acc
		}
	}
}

// CumulativeSumRows applies the running sum over the named rows only.
func CumulativeSumRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) error {
	return cumulateRows(c, rows, func(a, b T) T { return a + b })
}

// CumulativeProductRows applies the running product over the named rows.
func CumulativeProductRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) error {
	return cumulateRows(c, rows, func(a, b T) T { return a * b })
}

// CumulativeMinRows applies the running minimum over the named rows.
func CumulativeMinRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) error {
	return cumulateRows(c, rows, func(a, b T) T {
		if b < a {
			return b
		}
		return a
	})
}

// CumulativeMaxRows applies the running maximum over the named rows.
func CumulativeMaxRows[T Numeric](c *column.Container[T], rows iter.Seq[int64]) error {
	return cumulateRows(c, rows, func(a, b T) T {
		if b > a {
			return b
		}
		return a
	})
}

// cumulateRows drains the lazy index sequence once, validating every index
// before any cell is written so a bad index cannot leave a half-applied
// fold behind.
func cumulateRows[T Numeric](c *column.Container[T], rows iter.Seq[int64], fn func(T, T) T) error {
	var resolved []int64
	for row := range rows {
		if _, _, err := c.Locate(row); err != nil {
			return err
		}
		resolved = append(resolved, row)
	}
	var acc T
	seeded := false
	for _, row := range resolved {
		v, valid, err := c.Get(row)
		if err != nil {
			return err
		}
		if !valid {
			continue
		}
		if seeded {
			acc = fn(acc, v)
		} else {
			acc = v
			seeded = true
		}
		if err := c.Set(row, acc); err != nil {
			return err
		}
	}
	return nil
}
