package cpu

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Reshape returns a copy of x with a new shape. A single -1 dimension is inferred.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	shape := inferShape(x.NumElements(), newShape)
	if shape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v", x.Shape(), x.NumElements(), newShape))
	}
	return x.Clone().WithShape(shape)
}

func inferShape(numElements int, shape tensor.Shape) tensor.Shape {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d <= 0:
			panic(fmt.Sprintf("reshape: invalid dimension %d in %v", d, shape))
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if numElements%known != 0 {
			panic(fmt.Sprintf("reshape: cannot infer dimension of %v for %d elements", shape, numElements))
		}
		out[infer] = numElements / known
	}
	return out
}

// Transpose permutes dimensions; with no axes it reverses them.
// Works for every dtype.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	inShape := x.Shape()
	rank := len(inShape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", rank, len(axes)))
	}

	seen := make([]bool, rank)
	outShape := make(tensor.Shape, rank)
	strides := make([]int, rank)
	inStrides := x.Strides()
	for i, ax := range axes {
		ax = tensor.NormalizeDim(ax, rank)
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d in %v", ax, axes))
		}
		seen[ax] = true
		outShape[i] = inShape[ax]
		strides[i] = inStrides[ax]
	}

	result := tensor.MustRaw(outShape, x.DType(), cpu.device)
	gatherStrided(result, x, strides)
	return result
}

// Expand broadcasts x to shape, copying repeated values. Works for every dtype.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if len(shape) < len(xShape) {
		panic(fmt.Sprintf("expand: target shape %v has fewer dimensions than %v", shape, xShape))
	}
	pad := len(shape) - len(xShape)
	for i, d := range xShape {
		if d != 1 && d != shape[pad+i] {
			panic(fmt.Sprintf("expand: cannot expand %v to %v", xShape, shape))
		}
	}

	result := tensor.MustRaw(shape, x.DType(), cpu.device)
	gatherStrided(result, x, broadcastStrides(xShape, shape))
	return result
}

// gatherStrided fills dst in row-major order reading src at the offsets
// described by per-dimension strides over dst's shape.
func gatherStrided(dst, src *tensor.RawTensor, strides []int) {
	es := src.DType().Size()
	out, in := dst.Data(), src.Data()
	it := &broadcastIndexer{
		shape:   dst.Shape(),
		strides: [][]int{strides},
		coord:   make([]int, len(dst.Shape())),
		offsets: make([]int, 1),
	}
	n := dst.NumElements()
	for i := 0; i < n; i++ {
		off := it.offsets[0] * es
		copy(out[i*es:(i+1)*es], in[off:off+es])
		it.next()
	}
}

// Unsqueeze inserts a size-1 dimension at dim.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape)+1)
	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return x.Clone().WithShape(out)
}

// Squeeze removes the size-1 dimension at dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	return x.Clone().WithShape(out)
}
