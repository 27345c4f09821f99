package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/perceiver/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("matmul", a)
	requireFloat32("matmul", b)

	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: incompatible shapes %v @ %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	result := tensor.MustRaw(tensor.Shape{m, n}, tensor.Float32, cpu.device)
	sgemm(m, k, n, a.AsFloat32(), b.AsFloat32(), result.AsFloat32())
	return result
}

// sgemm computes c = a @ b for row-major a [m, k], b [k, n], c [m, n].
func sgemm(m, k, n int, a, b, c []float32) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}
