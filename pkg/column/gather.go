package column

import (
	"github.com/quarrydata/quarry/pkg/errors"
)

// Gather builds a new container whose row i is self[indices[i]] (or
// self[indices[n-1-i]] when invert is set, i.e. the index sequence is read
// back to front). A null index yields a null output row. Out-of-range
// indices are rejected before any row is written, so the failure leaves no
// partially built result behind.
//
// The index column may have any chunk layout; it is resolved row by row
// through its own chunk arithmetic. Gather is the backbone of sort, filter
// and join materialization.
func (c *Container[T]) Gather(indices *Container[int64], invert bool) (*Container[T], error) {
	n := indices.Len()

	// Validate every index up front.
	for i := int64(0); i < n; i++ {
		iv, valid, err := indices.Get(i)
		if err != nil {
			return nil, err
		}
		if valid && (iv < 0 || iv >= c.length) {
			return nil, errors.Newf(errors.ErrorTypeIndex,
				"gather index %d at row %d out of range [0, %d)", iv, i, c.length)
		}
	}

	out, err := NewWithChunkCapacity[T](c.chunkCap)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < n; i++ {
		row := i
		if invert {
			row = n - 1 - i
		}
		iv, valid, err := indices.Get(row)
		if err != nil {
			return nil, err
		}
		if !valid {
			if err := out.AppendNull(); err != nil {
				return nil, err
			}
			continue
		}
		v, srcValid, err := c.Get(iv)
		if err != nil {
			return nil, err
		}
		if !srcValid {
			err = out.AppendNull()
		} else {
			err = out.Append(v)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GroupIndices returns, for each distinct valid value, the ordered list of
// rows holding it, plus the ordered list of null rows. The GroupBy layer
// consumes this to build its buckets.
func (c *Container[T]) GroupIndices() (map[T][]int64, []int64) {
	groups := make(map[T][]int64)
	var nulls []int64
	var row int64
	for ci := range c.pairs {
		values := c.pairs[ci].values.Values()
		validity := c.pairs[ci].validity
		for local := range values {
			if validity.Get(local) {
				groups[values[local]] = append(groups[values[local]], row)
			} else {
				nulls = append(nulls, row)
			}
			row++
		}
	}
	return groups, nulls
}

// FillNulls replaces every null row with v in place, marking it valid.
// Borrowed chunks and bitmaps are materialized first, so filling an
// Arrow-imported column allocates.
func (c *Container[T]) FillNulls(v T) {
	for ci := range c.pairs {
		n := c.pairs[ci].values.Len()
		validity := c.pairs[ci].validity
		if validity.CountOnes(n) == n {
			continue
		}
		values := c.MutableValues(ci)
		validity = c.mutableValidity(ci)
		for local := 0; local < n; local++ {
			if !validity.Get(local) {
				values[local] = v
				c.nullCount += int64(validity.Set(local, true))
			}
		}
	}
}
