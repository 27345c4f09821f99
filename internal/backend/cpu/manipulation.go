package cpu

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Cat concatenates tensors along dim. Works for every dtype.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	first := tensors[0].Shape()
	dim = tensor.NormalizeDim(dim, len(first))

	outShape := first.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if t.DType() != tensors[0].DType() {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), tensors[0].DType()))
		}
		if len(s) != len(first) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, expected %d", i, len(s), len(first)))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v incompatible with %v along dim %d", i, s, first, dim))
			}
		}
		outShape[dim] += s[dim]
	}

	result := tensor.MustRaw(outShape, tensors[0].DType(), cpu.device)
	es := result.DType().Size()
	outer := first[:dim].NumElements()
	inner := first[dim+1:].NumElements() * es
	out := result.Data()

	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.Shape()[dim] * inner
			copy(out[pos:pos+block], t.Data()[o*block:(o+1)*block])
			pos += block
		}
	}
	return result
}

// Chunk splits x into n equal parts along dim. Works for every dtype.
func (cpu *CPUBackend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if n <= 0 || shape[dim]%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d of size %d is not divisible into %d parts", dim, shape[dim], n))
	}

	partShape := shape.Clone()
	partShape[dim] = shape[dim] / n
	es := x.DType().Size()
	outer := shape[:dim].NumElements()
	block := partShape[dim] * shape[dim+1:].NumElements() * es
	in := x.Data()

	parts := make([]*tensor.RawTensor, n)
	for p := range parts {
		part := tensor.MustRaw(partShape, x.DType(), cpu.device)
		out := part.Data()
		for o := 0; o < outer; o++ {
			src := (o*n + p) * block
			copy(out[o*block:(o+1)*block], in[src:src+block])
		}
		parts[p] = part
	}
	return parts
}
