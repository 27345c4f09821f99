package cpu

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// SumDim sums along dim, optionally keeping it as size 1.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, 1)
}

// MeanDim averages along dim, optionally keeping it as size 1.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	requireFloat32("meandim", x)
	d := tensor.NormalizeDim(dim, len(x.Shape()))
	return cpu.reduceDim("meandim", x, d, keepDim, 1/float64(x.Shape()[d]))
}

func (cpu *CPUBackend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim bool, scale float64) *tensor.RawTensor {
	requireFloat32(op, x)
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			outShape = append(outShape, d)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result := tensor.MustRaw(outShape, tensor.Float32, cpu.device)
	src, dst := x.AsFloat32(), result.AsFloat32()

	size := shape[dim]
	inner := shape[dim+1:].NumElements()
	outer := shape[:dim].NumElements()
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in
			var acc float64
			for i := 0; i < size; i++ {
				acc += float64(src[base+i*inner])
			}
			dst[o*inner+in] = float32(acc * scale)
		}
	}
	return result
}
