package cpu

import (
	"math"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Softmax computes softmax along dim.
//
// The slice maximum is subtracted before exponentiation, so entries set to
// -math.MaxFloat32 receive a weight of exactly 0 whenever the slice holds at
// least one ordinary value.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	requireFloat32("softmax", x)
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustRaw(shape, tensor.Float32, cpu.device)
	src, dst := x.AsFloat32(), result.AsFloat32()

	size := shape[dim]
	inner := shape[dim+1:].NumElements()
	outer := shape[:dim].NumElements()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			maxVal := float32(math.Inf(-1))
			for i := 0; i < size; i++ {
				maxVal = max(maxVal, src[base+i*inner])
			}

			var sum float64
			for i := 0; i < size; i++ {
				e := math.Exp(float64(src[base+i*inner] - maxVal))
				dst[base+i*inner] = float32(e)
				sum += e
			}

			inv := float32(1 / sum)
			for i := 0; i < size; i++ {
				dst[base+i*inner] *= inv
			}
		}
	}
	return result
}

// GELU applies the exact Gaussian error linear unit: 0.5·x·(1 + erf(x/√2)).
func (cpu *CPUBackend) GELU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("gelu", x, func(v float32) float32 {
		f := float64(v)
		return float32(0.5 * f * (1 + math.Erf(f/math.Sqrt2)))
	})
}
