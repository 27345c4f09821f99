package nn

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// DefaultFeedForwardMult is the hidden-width multiplier used when none is given.
const DefaultFeedForwardMult = 4

// FeedForward is a position-wise MLP with a GELU-gated hidden layer.
//
// Architecture:
//
//	h      = x @ W_in.T + b_in        [..., dim] -> [..., 2·dim·mult]
//	a, g   = chunk(h, 2)              two halves of [..., dim·mult]
//	y      = Dropout(a * GELU(g)) @ W_out.T + b_out  -> [..., dim]
//
// Example:
//
//	ff := nn.NewFeedForward(512, 4, 0, backend)
//	y := ff.Forward(x) // [batch, 256, 512] -> [batch, 256, 512]
type FeedForward[B tensor.Backend] struct {
	In      *Linear[B] // dim -> 2·dim·mult
	Out     *Linear[B] // dim·mult -> dim
	Dropout *Dropout[B]
	dim     int
	mult    int
}

// NewFeedForward creates a GEGLU feed-forward block.
// A non-positive mult selects DefaultFeedForwardMult.
func NewFeedForward[B tensor.Backend](dim, mult int, dropout float32, backend B) *FeedForward[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("NewFeedForward: dim must be positive, got %d", dim))
	}
	if mult <= 0 {
		mult = DefaultFeedForwardMult
	}
	return &FeedForward[B]{
		In:      NewLinear(dim, 2*dim*mult, backend),
		Out:     NewLinear(dim*mult, dim, backend),
		Dropout: NewDropout[B](dropout),
		dim:     dim,
		mult:    mult,
	}
}

// Forward applies the block to x of shape [..., dim].
func (f *FeedForward[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	parts := f.In.Forward(x).Chunk(2, -1)
	hidden := GeGLU(parts[0], parts[1])
	return f.Out.Forward(f.Dropout.Forward(hidden))
}

// SetTraining toggles the block's dropout.
func (f *FeedForward[B]) SetTraining(training bool) {
	f.Dropout.SetTraining(training)
}

// Parameters returns the parameters of both projections.
func (f *FeedForward[B]) Parameters() []*Parameter[B] {
	return append(f.In.Parameters(), f.Out.Parameters()...)
}

// Dim returns the input and output width.
func (f *FeedForward[B]) Dim() int {
	return f.dim
}

// Mult returns the hidden-width multiplier.
func (f *FeedForward[B]) Mult() int {
	return f.mult
}
