package nn

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Parameter is a named, trainable tensor owned by a layer.
//
// A Parameter is shared by reference: tied layers hold the same *Parameter,
// so a change made through one is visible through all of them.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter around an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Shape returns the parameter's shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// NumElements returns the number of scalar values.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// Load overwrites the parameter values.
//
// Load must not run concurrently with a forward pass that reads p.
func (p *Parameter[B]) Load(values []float32) error {
	if len(values) != p.NumElements() {
		return fmt.Errorf("parameter %q: expected %d values for shape %v, got %d",
			p.name, p.NumElements(), p.Shape(), len(values))
	}
	copy(p.tensor.Data(), values)
	return nil
}

// Fill sets every value of the parameter to v.
func (p *Parameter[B]) Fill(v float32) {
	data := p.tensor.Data()
	for i := range data {
		data[i] = v
	}
}
