package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](MustRaw(shape, DataTypeOf[T](), b.Device()), b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Ones creates a float32 tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[float32, B] {
	return Full[float32, B](shape, 1, b)
}

// Randn creates a float32 tensor with samples from the standard normal
// distribution.
//
//nolint:gosec // math/rand is appropriate for weight initialization
func Randn[B Backend](shape Shape, b B) *Tensor[float32, B] {
	t := Zeros[float32, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(rand.NormFloat64())
	}
	return t
}

// Uniform creates a float32 tensor with samples from U(low, high).
//
//nolint:gosec // math/rand is appropriate for weight initialization
func Uniform[B Backend](shape Shape, low, high float32, b B) *Tensor[float32, B] {
	t := Zeros[float32, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = low + (high-low)*rand.Float32()
	}
	return t
}

// Linspace returns n evenly spaced values over [start, end].
// With n == 1 the single value is start.
//
// Example:
//
//	tensor.Linspace(-1, 1, 5, backend) // [-1, -0.5, 0, 0.5, 1]
func Linspace[B Backend](start, end float32, n int, b B) *Tensor[float32, B] {
	if n <= 0 {
		panic(fmt.Sprintf("linspace: n must be positive, got %d", n))
	}
	t := Zeros[float32, B](Shape{n}, b)
	data := t.Data()
	if n == 1 {
		data[0] = start
		return t
	}
	step := float64(end-start) / float64(n-1)
	for i := range data {
		data[i] = float32(float64(start) + float64(i)*step)
	}
	data[n-1] = end
	return t
}
