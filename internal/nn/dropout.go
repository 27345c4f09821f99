package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Dropout zeroes elements with probability P during training and scales the
// survivors by 1/(1-P). In inference mode it is the identity.
//
// A Dropout starts in inference mode.
type Dropout[B tensor.Backend] struct {
	P        float32
	training bool
}

// NewDropout creates a Dropout layer.
// Panics unless 0 <= p < 1.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("NewDropout: probability must be in [0, 1), got %g", p))
	}
	return &Dropout[B]{P: p}
}

// SetTraining switches between training and inference behaviour.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Forward applies dropout to x.
//
//nolint:gosec // math/rand is appropriate for dropout sampling
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.P == 0 {
		return x
	}
	scale := 1 / (1 - d.P)
	keep := tensor.Zeros[float32](x.Shape(), x.Backend())
	data := keep.Data()
	for i := range data {
		if rand.Float32() >= d.P {
			data[i] = scale
		}
	}
	return x.Mul(keep)
}

// Parameters returns nil; dropout has no trainable parameters.
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
