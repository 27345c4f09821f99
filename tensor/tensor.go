// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// DType is a constraint for tensor data types: float32, int32 or bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the host device.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the untyped storage under a Tensor.
type RawTensor = tensor.RawTensor

// Backend defines the operations a compute backend implements.
// See backend/cpu for the pure Go implementation.
type Backend = tensor.Backend

// Tensor is a generic type-safe tensor.
//
// T is the element type (float32, int32, bool).
// B is the backend implementation.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Randn(tensor.Shape{2, 3}, backend)
//	y := x.MulScalar(2).Softmax(-1)
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a float32 tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
//
// Example:
//
//	mask := tensor.Full(tensor.Shape{1, 16}, true, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full(shape, value, b)
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return tensor.Randn(shape, b)
}

// Linspace returns n evenly spaced values over [start, end].
// n == 1 yields start.
func Linspace[B Backend](start, end float32, n int, b B) *Tensor[float32, B] {
	return tensor.Linspace(start, end, n, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice[T DType, B Backend](data []T, shape Shape, b B) *Tensor[T, B] {
	return tensor.MustFromSlice(data, shape, b)
}

// Cat concatenates tensors along a dimension.
//
// Example:
//
//	c := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{a, b}, -1)
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// Where selects x where cond is true and y elsewhere, with broadcasting.
func Where[T DType, B Backend](cond *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	return tensor.Where(cond, x, y)
}

// BroadcastShapes computes the broadcast shape of a and b following NumPy
// rules.
func BroadcastShapes(a, b Shape) (Shape, error) {
	return tensor.BroadcastShapes(a, b)
}
