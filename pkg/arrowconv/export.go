package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/errors"
)

// ToRecords exports same-length columns as a sequence of record batches.
// Every batch's row count is the largest run that stays inside one physical
// chunk of every column, so value and validity buffers can be wrapped
// zero-copy instead of re-sliced. A zero-row input still yields one empty
// batch so downstream schema consumers see the column types.
func ToRecords(fields []Field) ([]arrow.Record, error) {
	return ToRecordsLimit(fields, 0)
}

// ToRecordsLimit is ToRecords with an additional per-batch row cap;
// maxRows <= 0 means chunk-bounded only.
func ToRecordsLimit(fields []Field, maxRows int64) ([]arrow.Record, error) {
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrorTypeShape, "no columns to export")
	}

	arrowFields := make([]arrow.Field, len(fields))
	total := fields[0].Column.Len()
	for i, f := range fields {
		dt := dataTypes[f.Column.Kind()]
		if dt == nil {
			return nil, errors.Newf(errors.ErrorTypeUnsupported,
				"kind %s has no arrow representation", f.Column.Kind())
		}
		if f.Column.Len() != total {
			return nil, errors.Newf(errors.ErrorTypeShape,
				"column %q has %d rows, expected %d", f.Name, f.Column.Len(), total)
		}
		arrowFields[i] = arrow.Field{Name: f.Name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(arrowFields, nil)

	if total == 0 {
		b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		defer b.Release()
		return []arrow.Record{b.NewRecord()}, nil
	}

	var records []arrow.Record
	for offset := int64(0); offset < total; {
		rows := total - offset
		if maxRows > 0 && rows > maxRows {
			rows = maxRows
		}
		for _, f := range fields {
			run, err := f.Column.MaxContiguousRun(offset)
			if err != nil {
				return nil, err
			}
			if run < rows {
				rows = run
			}
		}
		cols := make([]arrow.Array, len(fields))
		for i, f := range fields {
			arr, err := sliceColumn(f.Column, offset, rows)
			if err != nil {
				return nil, err
			}
			cols[i] = arr
		}
		records = append(records, array.NewRecord(schema, cols, rows))
		offset += rows
	}
	return records, nil
}

// sliceColumn builds one Arrow array over rows [offset, offset+rows) of a
// column, dispatching once on the closed kind set.
func sliceColumn(col column.Any, offset, rows int64) (arrow.Array, error) {
	switch c := col.(type) {
	case *column.Container[int8]:
		return numericArray(c, offset, rows)
	case *column.Container[int16]:
		return numericArray(c, offset, rows)
	case *column.Container[int32]:
		return numericArray(c, offset, rows)
	case *column.Container[int64]:
		return numericArray(c, offset, rows)
	case *column.Container[uint8]:
		return numericArray(c, offset, rows)
	case *column.Container[uint16]:
		return numericArray(c, offset, rows)
	case *column.Container[uint32]:
		return numericArray(c, offset, rows)
	case *column.Container[uint64]:
		return numericArray(c, offset, rows)
	case *column.Container[float32]:
		return numericArray(c, offset, rows)
	case *column.Container[float64]:
		return numericArray(c, offset, rows)
	case *column.Container[bool]:
		return booleanArray(c, offset, rows)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"kind %s has no arrow export path", col.Kind())
	}
}

// numericArray wraps the chunk containing offset as Arrow buffers without
// copying. The whole chunk backs the buffers; the array's element offset
// points at the requested row, which keeps the validity bits addressable
// even when the slice does not start on a byte boundary.
func numericArray[T chunk.Element](c *column.Container[T], offset, rows int64) (arrow.Array, error) {
	ci, local, err := c.Locate(offset)
	if err != nil {
		return nil, err
	}
	chunkStart := offset - int64(local)
	chunkRows := int64(c.ChunkLen(ci))

	valueBytes, err := c.ValueBytes(chunkStart, chunkRows)
	if err != nil {
		return nil, err
	}
	validityBytes, err := c.ValidityBytes(chunkStart, chunkRows)
	if err != nil {
		return nil, err
	}
	nulls, err := c.NullCountRange(offset, rows)
	if err != nil {
		return nil, err
	}

	data := array.NewData(
		dataTypes[c.Kind()],
		int(rows),
		[]*memory.Buffer{memory.NewBufferBytes(validityBytes), memory.NewBufferBytes(valueBytes)},
		nil,
		int(nulls),
		local,
	)
	defer data.Release()
	return array.MakeFromData(data), nil
}

// booleanArray repacks byte-backed bools into the wire's bit-packed layout.
func booleanArray(c *column.Container[bool], offset, rows int64) (arrow.Array, error) {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(int(rows))
	for row := offset; row < offset+rows; row++ {
		v, valid, err := c.Get(row)
		if err != nil {
			return nil, err
		}
		if valid {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	}
	return b.NewBooleanArray(), nil
}
