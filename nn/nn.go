// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/perceiver/internal/nn"
	"github.com/born-ml/perceiver/internal/tensor"
)

// Module interface defines the common interface for unary layers.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearOption configures NewLinear.
type LinearOption = nn.LinearOption

// WithBias enables or disables the bias term (enabled by default).
func WithBias(enabled bool) LinearOption {
	return nn.WithBias(enabled)
}

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	toQ := nn.NewLinear(512, 64, backend, nn.WithBias(false))
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, opts...)
}

// LayerNorm normalizes over the last dimension.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a LayerNorm over a trailing dimension of size dim.
func NewLayerNorm[B tensor.Backend](dim int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(dim, epsilon, backend)
}

// Embedding maps token IDs to vectors.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an embedding table [numEmbeddings, embeddingDim].
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, backend)
}

// FeedForward is the GEGLU position-wise MLP.
type FeedForward[B tensor.Backend] = nn.FeedForward[B]

// NewFeedForward creates a feed-forward block with hidden width dim·mult.
func NewFeedForward[B tensor.Backend](dim, mult int, dropout float32, backend B) *FeedForward[B] {
	return nn.NewFeedForward(dim, mult, dropout, backend)
}

// AttentionConfig configures an Attention layer.
type AttentionConfig = nn.AttentionConfig

// Attention is multi-head scaled dot-product attention.
type Attention[B tensor.Backend] = nn.Attention[B]

// NewAttention creates an attention layer.
func NewAttention[B tensor.Backend](cfg AttentionConfig, backend B) *Attention[B] {
	return nn.NewAttention(cfg, backend)
}

// PreNorm applies a LayerNorm before a unary sublayer.
type PreNorm[B tensor.Backend] = nn.PreNorm[B]

// PreNormSelfAttention normalizes the input of a self-attention.
type PreNormSelfAttention[B tensor.Backend] = nn.PreNormSelfAttention[B]

// PreNormCrossAttention normalizes query and context of a cross-attention
// with independent LayerNorms.
type PreNormCrossAttention[B tensor.Backend] = nn.PreNormCrossAttention[B]

// RotaryService builds rotation tables and rotates queries and keys.
type RotaryService[B tensor.Backend] = nn.RotaryService[B]

// RotationTable holds the precomputed angles of a sequence.
type RotationTable[B tensor.Backend] = nn.RotationTable[B]

// PositionRotation is an optional rotation; the zero value applies none.
type PositionRotation[B tensor.Backend] = nn.PositionRotation[B]

// NewSinusoidalRotary creates the default rotary service.
// A non-positive theta selects 10000.
func NewSinusoidalRotary[B tensor.Backend](theta float64, backend B) *nn.SinusoidalRotary[B] {
	return nn.NewSinusoidalRotary(theta, backend)
}

// NewPositionRotation builds the rotation of seqLen positions.
func NewPositionRotation[B tensor.Backend](service RotaryService[B], seqLen, dimHead int) PositionRotation[B] {
	return nn.NewPositionRotation(service, seqLen, dimHead)
}

// FourierChannels returns the width of the Fourier features of inputAxis
// axes with numBands bands.
func FourierChannels(inputAxis, numBands int) int {
	return nn.FourierChannels(inputAxis, numBands)
}

// FourierEncode expands every value of x into [sin..., cos..., x] features.
func FourierEncode[B tensor.Backend](x *tensor.Tensor[float32, B], maxFreq float64, numBands int, base float64) (*tensor.Tensor[float32, B], error) {
	return nn.FourierEncode(x, maxFreq, numBands, base)
}

// FourierPositions encodes the [-1, 1] coordinate grid of the given axes.
func FourierPositions[B tensor.Backend](axes []int, maxFreq float64, numBands int, base float64, backend B) (*tensor.Tensor[float32, B], error) {
	return nn.FourierPositions(axes, maxFreq, numBands, base, backend)
}
