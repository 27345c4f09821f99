package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/perceiver/internal/tensor"
)

// FourierChannels returns the width of the positional features produced for
// inputAxis spatial axes with numBands frequency bands.
func FourierChannels(inputAxis, numBands int) int {
	return inputAxis * (2*numBands + 1)
}

// FourierEncode expands every value of x into multi-band sinusoidal features.
//
// For each value v the trailing output vector is
//
//	[sin(v·s_0·π) … sin(v·s_{K-1}·π), cos(v·s_0·π) … cos(v·s_{K-1}·π), v]
//
// where the K = numBands scales s are log-spaced from base^0 to
// base^(log_base(maxFreq/2)). The output shape is [...x, 2K+1].
func FourierEncode[B tensor.Backend](
	x *tensor.Tensor[float32, B],
	maxFreq float64,
	numBands int,
	base float64,
) (*tensor.Tensor[float32, B], error) {
	if numBands <= 0 {
		return nil, fmt.Errorf("fourier encode: num_bands must be positive, got %d", numBands)
	}
	if base <= 0 || base == 1 {
		return nil, fmt.Errorf("fourier encode: base must be positive and not 1, got %g", base)
	}
	if maxFreq <= 0 {
		return nil, fmt.Errorf("fourier encode: max_freq must be positive, got %g", maxFreq)
	}

	backend := x.Backend()
	end := math.Log(maxFreq/2) / math.Log(base)
	exps := tensor.Linspace(0, float32(end), numBands, backend).Data()
	scales := make([]float32, numBands)
	for i, e := range exps {
		scales[i] = float32(math.Pow(base, float64(e)))
	}

	v := x.Unsqueeze(-1)
	scaled := v.Mul(tensor.MustFromSlice(scales, tensor.Shape{numBands}, backend)).MulScalar(math.Pi)

	return tensor.Cat([]*tensor.Tensor[float32, B]{scaled.Sin(), scaled.Cos(), v}, -1), nil
}

// PositionGrid returns the coordinates of every position of a grid with the
// given axis sizes, each axis spanning [-1, 1]. The result has shape
// [*axes, len(axes)] and uses matrix ("ij") indexing: the last component
// varies with the last axis.
func PositionGrid[B tensor.Backend](axes []int, backend B) *tensor.Tensor[float32, B] {
	if len(axes) == 0 {
		panic("PositionGrid: at least one axis required")
	}

	grid := tensor.Shape(axes)
	coords := make([]*tensor.Tensor[float32, B], len(axes))
	for i, size := range axes {
		lin := tensor.Linspace(-1, 1, size, backend)

		// Place the axis at position i with singleton neighbours, then broadcast.
		view := make([]int, len(axes))
		for j := range view {
			view[j] = 1
		}
		view[i] = size
		coords[i] = lin.Reshape(view...).Expand(grid).Unsqueeze(-1)
	}
	return tensor.Cat(coords, -1)
}

// FourierPositions encodes the grid of the given axis sizes.
// The result has shape [*axes, FourierChannels(len(axes), numBands)], with the
// 2·numBands+1 features of each axis laid out axis after axis.
func FourierPositions[B tensor.Backend](
	axes []int,
	maxFreq float64,
	numBands int,
	base float64,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	enc, err := FourierEncode(PositionGrid(axes, backend), maxFreq, numBands, base)
	if err != nil {
		return nil, err
	}
	shape := append(tensor.Shape(axes).Clone(), FourierChannels(len(axes), numBands))
	return enc.Reshape(shape...), nil
}
