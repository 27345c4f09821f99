package cpu

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Where selects x where condition is true and y elsewhere, broadcasting all
// three operands. x and y share a dtype; condition must be bool.
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: x and y dtypes differ: %s vs %s", x.DType(), y.DType()))
	}

	xy, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, err := tensor.BroadcastShapes(condition.Shape(), xy)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	result := tensor.MustRaw(outShape, x.DType(), cpu.device)
	cond := condition.AsBool()
	es := x.DType().Size()
	out, xd, yd := result.Data(), x.Data(), y.Data()

	it := newBroadcastIndexer(outShape, condition.Shape(), x.Shape(), y.Shape())
	n := result.NumElements()
	for i := 0; i < n; i++ {
		src, off := yd, it.offsets[2]
		if cond[it.offsets[0]] {
			src, off = xd, it.offsets[1]
		}
		copy(out[i*es:(i+1)*es], src[off*es:(off+1)*es])
		it.next()
	}
	return result
}

// Embedding gathers rows of weight [numEmbeddings, dim] for every int32 index.
// The result has shape [...indices, dim].
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("embedding", weight)
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got %v", ws))
	}

	numEmbeddings, dim := ws[0], ws[1]
	outShape := append(indices.Shape().Clone(), dim)
	result := tensor.MustRaw(outShape, tensor.Float32, cpu.device)
	w, dst := weight.AsFloat32(), result.AsFloat32()

	for i, idx := range indices.AsInt32() {
		if idx < 0 || int(idx) >= numEmbeddings {
			panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", idx, numEmbeddings))
		}
		row := int(idx) * dim
		copy(dst[i*dim:(i+1)*dim], w[row:row+dim])
	}
	return result
}
