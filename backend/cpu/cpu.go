// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/perceiver/internal/backend/cpu"
	"github.com/born-ml/perceiver/internal/parallel"
	"github.com/born-ml/perceiver/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls how batched kernels fan out across goroutines.
type ParallelConfig = parallel.Config

// New creates a new CPU backend that uses every available core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/perceiver/backend/cpu"
//	    "github.com/born-ml/perceiver/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithParallel creates a CPU backend with an explicit fan-out policy.
// ParallelConfig{} runs every kernel on the calling goroutine.
func NewWithParallel(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithParallel(cfg)
}
