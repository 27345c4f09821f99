// Package tensor provides the numeric runtime used by the perceiver layers:
// a generic Tensor over a pluggable compute Backend.
package tensor

import "fmt"

// DType is a constraint for supported tensor element types.
//
// float32 carries all arithmetic. int32 holds token ids and bool holds
// attention masks; those two only move through data movement ops.
type DType interface {
	~float32 | ~int32 | ~bool
}

// DataType is the runtime tag of a tensor element type.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Int32
	Bool
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Bool:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// DataTypeOf returns the runtime tag for T.
func DataTypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case bool:
		return Bool
	default:
		panic(fmt.Sprintf("unsupported element type %T", zero))
	}
}
