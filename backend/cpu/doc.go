// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Dense matrix multiplication through gonum BLAS (SGEMM)
//   - Batched matmul fanned out over goroutines
//   - NumPy-compatible broadcasting
//   - Float32 compute; bool and int32 for masks and token IDs
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perceiver/backend/cpu"
//	    "github.com/born-ml/perceiver/perceiver"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := perceiver.New(perceiver.DefaultConfig(), backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
