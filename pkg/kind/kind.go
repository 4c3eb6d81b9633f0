// Package kind defines the closed set of element kinds the engine supports,
// the per-kind capability table, and the numeric type-promotion table used
// to pick the result kind of heterogeneous binary operations.
//
// Kernels and the column-type layer consult these tables instead of
// branching on Go types at every call site.
package kind

import "github.com/quarrydata/quarry/pkg/chunk"

// Kind identifies one supported element kind.
type Kind int8

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	// String is acknowledged for wire-format schema purposes only;
	// variable-length containers live outside this engine.
	String
)

var names = map[Kind]string{
	Invalid: "invalid",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "invalid"
}

// Capabilities describes what a kind can do. Kernels reject operations a
// kind lacks before touching any data.
type Capabilities struct {
	Arithmetic bool // +, -, *, /, sum, product, cumulative sum/product
	Bitwise    bool // and, or, xor, shifts (logical variants for bool)
	Ordered    bool // <, <=, >, >=, min, max
	Identities bool // usable additive/multiplicative identities
}

var capabilities = map[Kind]Capabilities{
	Bool:    {Bitwise: true},
	Int8:    {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Int16:   {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Int32:   {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Int64:   {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Uint8:   {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Uint16:  {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Uint32:  {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Uint64:  {Arithmetic: true, Bitwise: true, Ordered: true, Identities: true},
	Float32: {Arithmetic: true, Ordered: true, Identities: true},
	Float64: {Arithmetic: true, Ordered: true, Identities: true},
	String:  {},
}

// CapabilitiesOf returns the capability flags for k. Unknown kinds have no
// capabilities.
func CapabilitiesOf(k Kind) Capabilities {
	return capabilities[k]
}

// Size returns the in-memory element size in bytes, or 0 for kinds without
// a fixed width.
func (k Kind) Size() int {
	switch k {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// widening lists, per kind, the kinds it may widen to (itself included).
// Signed integers widen along the signed chain; unsigned integers widen to
// wider unsigned kinds and to signed kinds that can hold them. Integers up
// to 32 bits widen to both floats. int64 and uint64 widen only to
// themselves: 64-bit integers exceed exact float range, so int64+uint64
// (and any 64-bit integer against a float) has no common kind.
var widening = map[Kind][]Kind{
	Int8:    {Int8, Int16, Int32, Int64, Float32, Float64},
	Int16:   {Int16, Int32, Int64, Float32, Float64},
	Int32:   {Int32, Int64, Float32, Float64},
	Int64:   {Int64},
	Uint8:   {Uint8, Uint16, Int16, Uint32, Int32, Uint64, Int64, Float32, Float64},
	Uint16:  {Uint16, Uint32, Int32, Uint64, Int64, Float32, Float64},
	Uint32:  {Uint32, Uint64, Int64, Float32, Float64},
	Uint64:  {Uint64},
	Float32: {Float32, Float64},
	Float64: {Float64},
}

// specificity orders kinds from most to least specific; Promote picks the
// first kind in this order present in both operands' widening sets.
var specificity = []Kind{
	Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64, Float32, Float64,
}

// Promote returns the result kind for a binary operation over a and b, or
// Invalid when the pair has no common widening (e.g. int64 with uint64).
// Promote is symmetric.
func Promote(a, b Kind) Kind {
	wa, ok := widening[a]
	if !ok {
		return Invalid
	}
	wb, ok := widening[b]
	if !ok {
		return Invalid
	}
	for _, k := range specificity {
		if contains(wa, k) && contains(wb, k) {
			return k
		}
	}
	return Invalid
}

func contains(ks []Kind, k Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// Of returns the Kind for element type T.
func Of[T chunk.Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		return Invalid
	}
}
