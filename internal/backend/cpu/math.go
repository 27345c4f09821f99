package cpu

import (
	"math"

	"github.com/born-ml/perceiver/internal/tensor"
)

// unary applies fn to every element of a float32 tensor.
func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, fn func(float32) float32) *tensor.RawTensor {
	requireFloat32(op, x)
	result := tensor.MustRaw(x.Shape(), tensor.Float32, cpu.device)
	src, dst := x.AsFloat32(), result.AsFloat32()
	for i, v := range src {
		dst[i] = fn(v)
	}
	return result
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Sqrt computes the square root element-wise.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sqrt", x, func(v float32) float32 {
		return float32(math.Sqrt(float64(v)))
	})
}

// Rsqrt computes 1/sqrt(x) element-wise.
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("rsqrt", x, func(v float32) float32 {
		return float32(1 / math.Sqrt(float64(v)))
	})
}

// Sin computes the sine element-wise.
func (cpu *CPUBackend) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sin", x, func(v float32) float32 {
		return float32(math.Sin(float64(v)))
	})
}

// Cos computes the cosine element-wise.
func (cpu *CPUBackend) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("cos", x, func(v float32) float32 {
		return float32(math.Cos(float64(v)))
	})
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unary("mulscalar", x, func(v float32) float32 { return v * scalar })
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unary("addscalar", x, func(v float32) float32 { return v + scalar })
}
