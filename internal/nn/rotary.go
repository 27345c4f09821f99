package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/perceiver/internal/tensor"
)

// DefaultRotaryTheta is the base frequency of SinusoidalRotary.
const DefaultRotaryTheta = 10000.0

// RotationTable holds precomputed rotation angles for a sequence.
//
// Cos and Sin have shape [SeqLen, DimHead/2]. A table is read-only once built
// and may be shared by every self-attention call of one forward pass.
type RotationTable[B tensor.Backend] struct {
	Cos     *tensor.Tensor[float32, B]
	Sin     *tensor.Tensor[float32, B]
	SeqLen  int
	DimHead int
}

// RotaryService builds rotation tables and rotates query/key arrays with them.
type RotaryService[B tensor.Backend] interface {
	// MakeTable returns the table for a sequence of seqLen positions and
	// head vectors of size dimHead.
	MakeTable(seqLen, dimHead int) *RotationTable[B]

	// Rotate returns rotated copies of q and k, both shaped [..., SeqLen, DimHead].
	Rotate(q, k *tensor.Tensor[float32, B], table *RotationTable[B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B])
}

// SinusoidalRotary is the default RotaryService.
//
// For position p and frequency index i in [0, d/2):
//
//	θ_i = Theta^(-2i/d)
//	angle(p, i) = p·θ_i
//
// Each head vector is split into halves (x1, x2) and rotated as
//
//	[x1·cos − x2·sin, x2·cos + x1·sin]
type SinusoidalRotary[B tensor.Backend] struct {
	Theta   float64
	backend B
}

// NewSinusoidalRotary creates a rotary service. A non-positive theta selects
// DefaultRotaryTheta.
func NewSinusoidalRotary[B tensor.Backend](theta float64, backend B) *SinusoidalRotary[B] {
	if theta <= 0 {
		theta = DefaultRotaryTheta
	}
	return &SinusoidalRotary[B]{Theta: theta, backend: backend}
}

// MakeTable precomputes cos and sin for every position and frequency.
//
// Panics if seqLen is not positive or dimHead is not a positive even number.
func (r *SinusoidalRotary[B]) MakeTable(seqLen, dimHead int) *RotationTable[B] {
	if seqLen <= 0 {
		panic(fmt.Sprintf("SinusoidalRotary.MakeTable: seqLen must be positive, got %d", seqLen))
	}
	if dimHead <= 0 || dimHead%2 != 0 {
		panic(fmt.Sprintf("SinusoidalRotary.MakeTable: dimHead must be positive and even, got %d", dimHead))
	}

	half := dimHead / 2
	cosData := make([]float32, seqLen*half)
	sinData := make([]float32, seqLen*half)
	for i := 0; i < half; i++ {
		freq := math.Pow(r.Theta, -2*float64(i)/float64(dimHead))
		for pos := 0; pos < seqLen; pos++ {
			angle := float64(pos) * freq
			cosData[pos*half+i] = float32(math.Cos(angle))
			sinData[pos*half+i] = float32(math.Sin(angle))
		}
	}

	shape := tensor.Shape{seqLen, half}
	return &RotationTable[B]{
		Cos:     tensor.MustFromSlice(cosData, shape, r.backend),
		Sin:     tensor.MustFromSlice(sinData, shape, r.backend),
		SeqLen:  seqLen,
		DimHead: dimHead,
	}
}

// Rotate applies the table to q and k. Values are never rotated.
func (r *SinusoidalRotary[B]) Rotate(q, k *tensor.Tensor[float32, B], table *RotationTable[B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	return rotateHalf(q, table), rotateHalf(k, table)
}

func rotateHalf[B tensor.Backend](x *tensor.Tensor[float32, B], table *RotationTable[B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) < 2 || shape[len(shape)-2] != table.SeqLen || shape[len(shape)-1] != table.DimHead {
		panic(fmt.Sprintf("rotary: expected input [..., %d, %d], got shape %v", table.SeqLen, table.DimHead, shape))
	}

	halves := x.Chunk(2, -1)
	x1, x2 := halves[0], halves[1]
	first := x1.Mul(table.Cos).Sub(x2.Mul(table.Sin))
	second := x2.Mul(table.Cos).Add(x1.Mul(table.Sin))
	return tensor.Cat([]*tensor.Tensor[float32, B]{first, second}, -1)
}

// PositionRotation is an optional rotary position: the zero value means
// "no rotation". It is built once per forward pass and handed to each
// self-attention call.
type PositionRotation[B tensor.Backend] struct {
	Service RotaryService[B]
	Table   *RotationTable[B]
}

// NewPositionRotation builds the table for seqLen positions with service.
func NewPositionRotation[B tensor.Backend](service RotaryService[B], seqLen, dimHead int) PositionRotation[B] {
	return PositionRotation[B]{
		Service: service,
		Table:   service.MakeTable(seqLen, dimHead),
	}
}

// Present reports whether a rotation should be applied.
func (p PositionRotation[B]) Present() bool {
	return p.Service != nil && p.Table != nil
}

// Apply rotates q and k when the rotation is present and returns them
// unchanged otherwise.
func (p PositionRotation[B]) Apply(q, k *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	if !p.Present() {
		return q, k
	}
	return p.Service.Rotate(q, k, p.Table)
}
