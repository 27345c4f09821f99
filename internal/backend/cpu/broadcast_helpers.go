package cpu

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// broadcastStrides returns strides for reading inShape as if it had outShape.
// Broadcast and left-padded dimensions get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	orig := inShape.ComputeStrides()
	pad := len(outShape) - len(inShape)
	for i := range outShape {
		in := i - pad
		if in < 0 || inShape[in] == 1 {
			continue
		}
		strides[i] = orig[in]
	}
	return strides
}

// broadcastIndexer walks an output shape in row-major order and tracks the
// flat offset of the matching element in each broadcast operand.
type broadcastIndexer struct {
	shape   tensor.Shape
	strides [][]int
	coord   []int
	offsets []int
}

func newBroadcastIndexer(outShape tensor.Shape, inShapes ...tensor.Shape) *broadcastIndexer {
	it := &broadcastIndexer{
		shape:   outShape,
		strides: make([][]int, len(inShapes)),
		coord:   make([]int, len(outShape)),
		offsets: make([]int, len(inShapes)),
	}
	for k, s := range inShapes {
		it.strides[k] = broadcastStrides(s, outShape)
	}
	return it
}

// next advances to the following output element.
func (it *broadcastIndexer) next() {
	for d := len(it.shape) - 1; d >= 0; d-- {
		it.coord[d]++
		for k := range it.offsets {
			it.offsets[k] += it.strides[k][d]
		}
		if it.coord[d] < it.shape[d] {
			return
		}
		for k := range it.offsets {
			it.offsets[k] -= it.strides[k][d] * it.shape[d]
		}
		it.coord[d] = 0
	}
}
