package nn

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	backend := cpu.New()
//	toQ := nn.NewLinear(512, 64, backend, nn.WithBias(false))
//	q := toQ.Forward(latents) // [batch, 256, 512] -> [batch, 256, 64]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil when disabled
	backend     B
}

// LinearOption configures a Linear layer.
type LinearOption func(*linearOptions)

type linearOptions struct {
	bias bool
}

// WithBias enables or disables the bias term. Bias is enabled by default.
func WithBias(enabled bool) LinearOption {
	return func(o *linearOptions) {
		o.bias = enabled
	}
}

// NewLinear creates a new Linear layer.
//
// Panics if either feature count is not positive.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("NewLinear: feature counts must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}
	o := linearOptions{bias: true}
	for _, opt := range opts {
		opt(&o)
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)
	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		backend:     backend,
	}
	if o.bias {
		l.bias = NewParameter("bias", Zeros(tensor.Shape{outFeatures}, backend))
	}
	return l
}

// Forward computes x @ W.T + b over the last dimension of input.
//
// Input shape: [..., in_features]
// Output shape: [..., out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input [..., %d], got shape %v", l.inFeatures, shape))
	}

	// Collapse leading dimensions into one row axis for a single GEMM.
	rows := shape[:len(shape)-1].NumElements()
	flat := input.Reshape(rows, l.inFeatures)

	output := flat.MatMul(l.weight.Tensor().Transpose())
	if l.bias != nil {
		output = output.Add(l.bias.Tensor())
	}

	outShape := append(shape[:len(shape)-1].Clone(), l.outFeatures)
	return output.Reshape(outShape...)
}

// Parameters returns [weight, bias], or [weight] when bias is disabled.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil when the layer has none.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
