// Package arrowconv bridges column containers and the Apache Arrow wire
// representation: zero-copy wrapping of Arrow value and validity buffers on
// import, chunk-boundary-aware record batch slicing on export.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/kind"
)

// Field pairs a column with its wire-format name.
type Field struct {
	Name   string
	Column column.Any
}

// dataTypes maps each element kind to its Arrow data type. The table is the
// single place the engine ties kinds to wire type ids.
var dataTypes = map[kind.Kind]arrow.DataType{
	kind.Bool:    arrow.FixedWidthTypes.Boolean,
	kind.Int8:    arrow.PrimitiveTypes.Int8,
	kind.Int16:   arrow.PrimitiveTypes.Int16,
	kind.Int32:   arrow.PrimitiveTypes.Int32,
	kind.Int64:   arrow.PrimitiveTypes.Int64,
	kind.Uint8:   arrow.PrimitiveTypes.Uint8,
	kind.Uint16:  arrow.PrimitiveTypes.Uint16,
	kind.Uint32:  arrow.PrimitiveTypes.Uint32,
	kind.Uint64:  arrow.PrimitiveTypes.Uint64,
	kind.Float32: arrow.PrimitiveTypes.Float32,
	kind.Float64: arrow.PrimitiveTypes.Float64,
	kind.String:  arrow.BinaryTypes.String,
}

// DataTypeOf returns the Arrow data type for a kind, or nil when the kind
// has no wire representation.
func DataTypeOf(k kind.Kind) arrow.DataType {
	return dataTypes[k]
}
