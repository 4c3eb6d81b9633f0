package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/quarrydata/quarry/pkg/bitmap"
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/errors"
	"github.com/quarrydata/quarry/pkg/kind"
)

// FromArray wraps an Arrow array as a container without copying value
// bytes. The value buffer and, when the array starts on a byte boundary,
// the validity buffer become borrowed chunk views; mutating the resulting
// container later triggers copy-on-write.
//
// Boolean arrays are the exception: the wire packs them one bit per value
// while containers store one byte per value, so booleans are expanded.
// Unsupported wire types (decimal, dates, lists, dictionary, ...) fail
// with a wire error; struct arrays are handled by FromRecord.
func FromArray(arr arrow.Array) (column.Any, error) {
	col, err := emptyFor(arr.DataType())
	if err != nil {
		return nil, err
	}
	if err := AppendArray(col, arr); err != nil {
		return nil, err
	}
	return col, nil
}

// emptyFor creates an empty container for a supported primitive wire type.
func emptyFor(dt arrow.DataType) (column.Any, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return column.New[bool](), nil
	case arrow.INT8:
		return column.New[int8](), nil
	case arrow.INT16:
		return column.New[int16](), nil
	case arrow.INT32:
		return column.New[int32](), nil
	case arrow.INT64:
		return column.New[int64](), nil
	case arrow.UINT8:
		return column.New[uint8](), nil
	case arrow.UINT16:
		return column.New[uint16](), nil
	case arrow.UINT32:
		return column.New[uint32](), nil
	case arrow.UINT64:
		return column.New[uint64](), nil
	case arrow.FLOAT32:
		return column.New[float32](), nil
	case arrow.FLOAT64:
		return column.New[float64](), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeWire,
			"unsupported arrow type %s on import", dt.Name())
	}
}

// AppendArray attaches an Arrow array's rows to an existing container of
// the matching kind, zero-copy for numeric arrays.
func AppendArray(col column.Any, arr arrow.Array) error {
	switch a := arr.(type) {
	case *array.Int8:
		return appendNumeric(col, a.Int8Values(), arr)
	case *array.Int16:
		return appendNumeric(col, a.Int16Values(), arr)
	case *array.Int32:
		return appendNumeric(col, a.Int32Values(), arr)
	case *array.Int64:
		return appendNumeric(col, a.Int64Values(), arr)
	case *array.Uint8:
		return appendNumeric(col, a.Uint8Values(), arr)
	case *array.Uint16:
		return appendNumeric(col, a.Uint16Values(), arr)
	case *array.Uint32:
		return appendNumeric(col, a.Uint32Values(), arr)
	case *array.Uint64:
		return appendNumeric(col, a.Uint64Values(), arr)
	case *array.Float32:
		return appendNumeric(col, a.Float32Values(), arr)
	case *array.Float64:
		return appendNumeric(col, a.Float64Values(), arr)
	case *array.Boolean:
		return appendBoolean(col, a)
	default:
		return errors.Newf(errors.ErrorTypeWire,
			"unsupported arrow type %s on import", arr.DataType().Name())
	}
}

func appendNumeric[T chunk.Element](col column.Any, values []T, arr arrow.Array) error {
	c, ok := col.(*column.Container[T])
	if !ok {
		return errors.Newf(errors.ErrorTypeShape,
			"container kind %s does not match arrow type %s", col.Kind(), arr.DataType().Name())
	}
	if len(values) == 0 {
		return nil
	}
	return c.AppendView(values, validityOf(arr), int64(arr.NullN()))
}

func appendBoolean(col column.Any, arr *array.Boolean) error {
	c, ok := col.(*column.Container[bool])
	if !ok {
		return errors.Newf(errors.ErrorTypeShape,
			"container kind %s does not match arrow type bool", col.Kind())
	}
	for i := 0; i < arr.Len(); i++ {
		var err error
		if arr.IsNull(i) {
			err = c.AppendNull()
		} else {
			err = c.Append(arr.Value(i))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validityOf extracts the array's validity bits. The wire buffer is wrapped
// directly when present and byte-aligned; otherwise an owned bitmap is
// rebuilt bit by bit.
func validityOf(arr arrow.Array) *bitmap.Bitmap {
	n := arr.Len()
	if arr.NullN() == 0 || arr.NullBitmapBytes() == nil {
		bm := bitmap.New(n)
		bm.SetRange(0, n, true)
		return bm
	}
	if arr.Data().Offset() == 0 {
		return bitmap.NewView(arr.NullBitmapBytes())
	}
	bm := bitmap.New(n)
	for i := 0; i < n; i++ {
		if arr.IsValid(i) {
			bm.Set(i, true)
		}
	}
	return bm
}

// namedArray is one leaf array after struct flattening.
type namedArray struct {
	name string
	arr  arrow.Array
}

// flatten expands struct columns recursively, child fields taking the name
// parent_child; every other array passes through as a single leaf.
func flatten(name string, arr arrow.Array) []namedArray {
	s, ok := arr.(*array.Struct)
	if !ok {
		return []namedArray{{name: name, arr: arr}}
	}
	st := s.DataType().(*arrow.StructType)
	var leaves []namedArray
	for i := 0; i < s.NumField(); i++ {
		leaves = append(leaves, flatten(name+"_"+st.Field(i).Name, s.Field(i))...)
	}
	return leaves
}

// FromRecord imports every column of one record batch. Struct columns are
// flattened recursively.
func FromRecord(rec arrow.Record) ([]Field, error) {
	return FromRecords([]arrow.Record{rec})
}

// FromRecords imports a sequence of record batches sharing a schema into
// one set of containers; each batch's arrays arrive as further (zero-copy)
// chunks of the same columns.
func FromRecords(recs []arrow.Record) ([]Field, error) {
	var fields []Field
	for ri, rec := range recs {
		var leaves []namedArray
		for i := 0; i < int(rec.NumCols()); i++ {
			leaves = append(leaves, flatten(rec.Schema().Field(i).Name, rec.Column(i))...)
		}
		if ri == 0 {
			for _, leaf := range leaves {
				col, err := FromArray(leaf.arr)
				if err != nil {
					return nil, err
				}
				fields = append(fields, Field{Name: leaf.name, Column: col})
			}
			continue
		}
		if len(leaves) != len(fields) {
			return nil, errors.Newf(errors.ErrorTypeShape,
				"batch %d has %d columns, expected %d", ri, len(leaves), len(fields))
		}
		for i, leaf := range leaves {
			if err := AppendArray(fields[i].Column, leaf.arr); err != nil {
				return nil, err
			}
		}
	}
	return fields, nil
}

// KindOf maps a wire type to the engine kind, Invalid when unsupported as
// a container element.
func KindOf(dt arrow.DataType) kind.Kind {
	switch dt.ID() {
	case arrow.BOOL:
		return kind.Bool
	case arrow.INT8:
		return kind.Int8
	case arrow.INT16:
		return kind.Int16
	case arrow.INT32:
		return kind.Int32
	case arrow.INT64:
		return kind.Int64
	case arrow.UINT8:
		return kind.Uint8
	case arrow.UINT16:
		return kind.Uint16
	case arrow.UINT32:
		return kind.Uint32
	case arrow.UINT64:
		return kind.Uint64
	case arrow.FLOAT32:
		return kind.Float32
	case arrow.FLOAT64:
		return kind.Float64
	case arrow.STRING:
		return kind.String
	default:
		return kind.Invalid
	}
}
