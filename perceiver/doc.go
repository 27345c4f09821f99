// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package perceiver provides the Perceiver classifier.
//
// A Perceiver maps an input array [batch, *spatial, channels] of any spatial
// size to class logits. A small learned latent array cross-attends to the
// (Fourier position encoded) input and refines itself with latent
// self-attention, depth times, before mean pooling and a linear head.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perceiver/backend/cpu"
//	    "github.com/born-ml/perceiver/perceiver"
//	    "github.com/born-ml/perceiver/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    cfg := perceiver.DefaultConfig()
//	    cfg.Depth = 2
//	    model, err := perceiver.New(cfg, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    images := tensor.Randn(tensor.Shape{4, 32, 32, 3}, backend)
//	    logits, err := model.Forward(images, nil) // [4, 1000]
//	}
//
// # Configuration
//
// Config carries yaml tags; LoadConfig reads a file on top of DefaultConfig:
//
//	depth: 4
//	num_latents: 256
//	weight_tie_layers: true
//
// # Weight Tying
//
// With weight_tie_layers every depth index after the first reuses one
// instance per sublayer role. Model.Cache exposes the registry and
// Model.Describe reports which positions share an instance.
//
// # Errors
//
// Construction errors wrap ErrInvalidConfig; input and mask shape errors wrap
// ErrShapeMismatch. Test them with errors.Is.
package perceiver
