// Package nn implements the layers that make up a Perceiver.
//
// This package provides:
//   - Module and Parameter, the building blocks every layer shares
//   - Linear, LayerNorm, Embedding, Dropout and GELU
//   - FeedForward, a GELU-gated (GEGLU) position-wise MLP
//   - Attention, multi-head scaled dot-product attention for self and cross use
//   - PreNorm wrappers for unary, self-attention and cross-attention sublayers
//   - FourierEncode and PositionGrid for multi-band positional features
//   - RotaryService and SinusoidalRotary for rotary relative positions
//
// Layers are generic over the compute backend and never mutate their
// parameters while computing, so a single layer may serve concurrent calls.
package nn

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// Module is the base interface for unary layers.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module for input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested modules. Parameter-free modules return nil.
	Parameters() []*Parameter[B]
}

// Parameterized is implemented by anything that owns parameters.
type Parameterized[B tensor.Backend] interface {
	Parameters() []*Parameter[B]
}

// Trainable is implemented by layers whose behaviour differs between training
// and inference (dropout).
type Trainable interface {
	SetTraining(training bool)
}

// CountParameters returns the number of scalar values held by params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}
