package cpu

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/parallel"
	"github.com/born-ml/perceiver/internal/tensor"
)

// BatchMatMul multiplies the trailing matrices of a and b.
//
//	[..., M, K] @ [..., K, N] -> [..., M, N]
//	[..., M, K] @ [K, N]      -> [..., M, N]
//
// Leading dimensions of a and b must match exactly unless b is 2D, in which
// case the same right-hand matrix is used for every batch entry. Batch entries
// are computed in parallel.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("batchmatmul", a)
	requireFloat32("batchmatmul", b)

	as, bs := a.Shape(), b.Shape()
	if len(as) < 3 || len(bs) < 2 {
		panic(fmt.Sprintf("batchmatmul: expected a of rank >= 3 and b of rank >= 2, got %v and %v", as, bs))
	}
	sharedB := len(bs) == 2
	if !sharedB && (len(as) != len(bs) || !as[:len(as)-2].Equal(bs[:len(bs)-2])) {
		panic(fmt.Sprintf("batchmatmul: batch dimensions differ: %v vs %v", as, bs))
	}

	m, k := as[len(as)-2], as[len(as)-1]
	kb, n := bs[len(bs)-2], bs[len(bs)-1]
	if k != kb {
		panic(fmt.Sprintf("batchmatmul: incompatible shapes %v @ %v", as, bs))
	}

	batch := as[:len(as)-2].NumElements()
	outShape := append(as[:len(as)-2].Clone(), m, n)
	result := tensor.MustRaw(outShape, tensor.Float32, cpu.device)

	av, bv, cv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
	aStep, bStep, cStep := m*k, k*n, m*n
	if sharedB {
		bStep = 0
	}

	parallel.For(batch, func(i int) {
		sgemm(m, k, n,
			av[i*aStep:(i+1)*aStep],
			bv[i*bStep:i*bStep+k*n],
			cv[i*cStep:(i+1)*cStep])
	}, cpu.parallel)

	return result
}
