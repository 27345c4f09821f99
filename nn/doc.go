// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers the Perceiver is built from.
//
// # Overview
//
// This package contains:
//   - Projections: Linear (optional bias), Embedding
//   - Normalization: LayerNorm, PreNorm wrappers
//   - Attention: multi-head scaled dot-product attention for self and cross use
//   - FeedForward: GEGLU position-wise MLP
//   - Positions: Fourier features of a coordinate grid, rotary rotations
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perceiver/backend/cpu"
//	    "github.com/born-ml/perceiver/nn"
//	    "github.com/born-ml/perceiver/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    cross := nn.NewAttention(nn.AttentionConfig{
//	        QueryDim: 64, ContextDim: 29, Heads: 1, DimHead: 32,
//	    }, backend)
//
//	    latents := tensor.Randn(tensor.Shape{2, 16, 64}, backend)
//	    context := tensor.Randn(tensor.Shape{2, 1024, 29}, backend)
//	    y := cross.Forward(latents, context, nil, nn.PositionRotation[*cpu.Backend]{})
//	}
//
// # Masks
//
// Attention masks are bool tensors [batch, context] (or [1, context]) where
// true marks positions that may be attended to. Masked scores are replaced
// with -MaxFloat32 before the softmax, so their weight is exactly zero.
//
// # Errors
//
// Layer constructors and Forward methods panic on shape errors, the way
// slice indexing does. perceiver.Model validates inputs up front and returns
// errors instead.
package nn
