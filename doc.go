// Package quarry provides a chunked, nullable columnar data engine with
// zero-copy Apache Arrow interchange and generic compute kernels.
//
// Columns are stored as sequences of fixed-width chunks paired with
// validity bitmaps, so appends never reallocate existing data and Arrow
// buffers can be adopted without copying. Mutation of borrowed buffers is
// copy-on-write.
//
// # Quick Start
//
// Build a column, run a kernel, and export it as Arrow record batches:
//
//	import (
//	    "github.com/quarrydata/quarry/pkg/arrowconv"
//	    "github.com/quarrydata/quarry/pkg/column"
//	    "github.com/quarrydata/quarry/pkg/kernel"
//	)
//
//	a := column.New[int64]()
//	for _, v := range []int64{1, 2, 3} {
//	    a.Append(v)
//	}
//	a.AppendNull()
//
//	doubled, _ := kernel.MultiplyScalar(a, int64(2))
//	total := kernel.Sum(doubled)
//
//	recs, _ := arrowconv.ToRecords([]arrowconv.Field{{Name: "v", Column: doubled}})
//
// # Key Packages
//
//	pkg/chunk     - Fixed-width typed chunks with copy-on-write views
//	pkg/bitmap    - LSB-first validity bitmaps
//	pkg/column    - Chunked nullable containers, gather and grouping
//	pkg/kind      - Runtime type kinds, capabilities, and promotion
//	pkg/kernel    - Elementwise, comparison, reduction, and cumulative kernels
//	pkg/arrowconv - Arrow array/record import and export
//	pkg/errors    - Structured error handling
//	pkg/logger    - Structured logging
//	pkg/config    - Configuration loading
//
// # Null Semantics
//
// Binary kernels produce a valid output row only where both inputs are
// valid; comparisons on null rows yield null, not false. Reductions skip
// null rows: Sum and Product return their identities for an all-null
// column, Min and Max report ok=false. Cumulative kernels carry the
// running value across null rows without resetting it.
package quarry
