package nn

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// GELUBackend is an interface for backends that support the exact GELU activation.
type GELUBackend interface {
	GELU(*tensor.RawTensor) *tensor.RawTensor
}

// GELUFunc applies the Gaussian Error Linear Unit: 0.5·x·(1 + erf(x/√2)).
//
// Panics if the backend does not implement GELUBackend.
//
// Example:
//
//	output := nn.GELUFunc(input)
func GELUFunc[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := x.Backend()
	gb, ok := any(backend).(GELUBackend)
	if !ok {
		panic("GELUFunc: backend must implement GELU operation")
	}
	return tensor.New[float32, B](gb.GELU(x.Raw()), backend)
}

// GeGLU applies the GELU-gated linear unit: x * GELU(gate).
func GeGLU[B tensor.Backend](x, gate *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Mul(GELUFunc(gate))
}

// GELU is a parameter-free activation module.
type GELU[B tensor.Backend] struct{}

// NewGELU creates a GELU activation module.
func NewGELU[B tensor.Backend]() *GELU[B] {
	return &GELU[B]{}
}

// Forward applies GELU element-wise.
func (g *GELU[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return GELUFunc(x)
}

// Parameters returns nil; GELU has no trainable parameters.
func (g *GELU[B]) Parameters() []*Parameter[B] {
	return nil
}
