package nn

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// DefaultLayerNormEpsilon is the variance floor used unless configured otherwise.
const DefaultLayerNormEpsilon = 1e-5

// LayerNorm applies Layer Normalization over the last dimension.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// Statistics are computed independently for every position, so normalizing a
// context never mixes information between positions.
type LayerNorm[B tensor.Backend] struct {
	Gamma   *Parameter[B] // learnable scale [dim]
	Beta    *Parameter[B] // learnable shift [dim]
	Epsilon float32
	dim     int
}

// NewLayerNorm creates a LayerNorm over a trailing dimension of size dim.
// Gamma starts at ones and beta at zeros.
func NewLayerNorm[B tensor.Backend](dim int, epsilon float32, backend B) *LayerNorm[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("NewLayerNorm: dim must be positive, got %d", dim))
	}
	return &LayerNorm[B]{
		Gamma:   NewParameter("gamma", tensor.Ones(tensor.Shape{dim}, backend)),
		Beta:    NewParameter("beta", Zeros(tensor.Shape{dim}, backend)),
		Epsilon: epsilon,
		dim:     dim,
	}
}

// Forward normalizes x of shape [..., dim].
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.dim {
		panic(fmt.Sprintf("LayerNorm.Forward: expected input [..., %d], got shape %v", l.dim, shape))
	}

	mean := x.MeanDim(-1, true)
	centered := x.Sub(mean)
	variance := centered.Mul(centered).MeanDim(-1, true)
	normed := centered.Mul(variance.AddScalar(l.Epsilon).Rsqrt())

	// gamma and beta broadcast from [dim] against [..., dim].
	return normed.Mul(l.Gamma.Tensor()).Add(l.Beta.Tensor())
}

// Parameters returns gamma and beta.
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}
