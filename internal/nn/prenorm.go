package nn

import (
	"github.com/born-ml/perceiver/internal/tensor"
)

// PreNorm normalizes the input of a unary sublayer: y = fn(LayerNorm(x)).
type PreNorm[B tensor.Backend] struct {
	Norm *LayerNorm[B]
	Fn   Module[B]
}

// NewPreNorm wraps fn with a LayerNorm over dim.
func NewPreNorm[B tensor.Backend](dim int, eps float32, fn Module[B], backend B) *PreNorm[B] {
	return &PreNorm[B]{
		Norm: NewLayerNorm(dim, eps, backend),
		Fn:   fn,
	}
}

// Forward applies the normalization and the wrapped sublayer.
func (p *PreNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return p.Fn.Forward(p.Norm.Forward(x))
}

// SetTraining forwards the mode to the wrapped sublayer when it cares.
func (p *PreNorm[B]) SetTraining(training bool) {
	if t, ok := p.Fn.(Trainable); ok {
		t.SetTraining(training)
	}
}

// Parameters returns the norm parameters followed by the sublayer's.
func (p *PreNorm[B]) Parameters() []*Parameter[B] {
	return append(p.Norm.Parameters(), p.Fn.Parameters()...)
}

// PreNormSelfAttention normalizes the latent array once and lets the attention
// use it as both query and context. Masks never reach it; a rotary position
// may.
type PreNormSelfAttention[B tensor.Backend] struct {
	Norm *LayerNorm[B]
	Attn *Attention[B]
}

// NewPreNormSelfAttention wraps attn with a LayerNorm over its query width.
func NewPreNormSelfAttention[B tensor.Backend](attn *Attention[B], eps float32, backend B) *PreNormSelfAttention[B] {
	return &PreNormSelfAttention[B]{
		Norm: NewLayerNorm(attn.QueryDim(), eps, backend),
		Attn: attn,
	}
}

// Forward computes Attn(norm(x), norm(x)) with the optional rotation.
func (p *PreNormSelfAttention[B]) Forward(x *tensor.Tensor[float32, B], rot PositionRotation[B]) *tensor.Tensor[float32, B] {
	normed := p.Norm.Forward(x)
	return p.Attn.Forward(normed, normed, nil, rot)
}

// SetTraining toggles the attention dropout.
func (p *PreNormSelfAttention[B]) SetTraining(training bool) {
	p.Attn.SetTraining(training)
}

// Parameters returns the norm parameters followed by the attention's.
func (p *PreNormSelfAttention[B]) Parameters() []*Parameter[B] {
	return append(p.Norm.Parameters(), p.Attn.Parameters()...)
}

// PreNormCrossAttention normalizes the query and the context with two
// independent LayerNorms before cross-attention.
type PreNormCrossAttention[B tensor.Backend] struct {
	Norm        *LayerNorm[B]
	ContextNorm *LayerNorm[B]
	Attn        *Attention[B]
}

// NewPreNormCrossAttention wraps attn with query and context LayerNorms.
func NewPreNormCrossAttention[B tensor.Backend](attn *Attention[B], eps float32, backend B) *PreNormCrossAttention[B] {
	return &PreNormCrossAttention[B]{
		Norm:        NewLayerNorm(attn.QueryDim(), eps, backend),
		ContextNorm: NewLayerNorm(attn.ContextDim(), eps, backend),
		Attn:        attn,
	}
}

// Forward computes Attn(norm(x), contextNorm(context), mask).
func (p *PreNormCrossAttention[B]) Forward(
	x, context *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
) *tensor.Tensor[float32, B] {
	return p.Attn.Forward(p.Norm.Forward(x), p.ContextNorm.Forward(context), mask, PositionRotation[B]{})
}

// SetTraining toggles the attention dropout.
func (p *PreNormCrossAttention[B]) SetTraining(training bool) {
	p.Attn.SetTraining(training)
}

// Parameters returns both norms' parameters followed by the attention's.
func (p *PreNormCrossAttention[B]) Parameters() []*Parameter[B] {
	params := p.Norm.Parameters()
	params = append(params, p.ContextNorm.Parameters()...)
	return append(params, p.Attn.Parameters()...)
}
