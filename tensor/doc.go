// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API of the Perceiver engine.
//
// # Overview
//
// Tensors are the data structure every layer consumes and produces:
//   - Generic type-safe tensors (Tensor[T, B]) over float32, int32 and bool
//   - NumPy-style broadcasting for element-wise ops and Where
//   - Row-major contiguous storage; every op allocates its result and never
//     mutates its operands
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/perceiver/backend/cpu"
//	    "github.com/born-ml/perceiver/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    keep := tensor.Full(tensor.Shape{2, 3}, true, backend)
//	    w := tensor.Where(keep, z, x)
//	}
//
// # Masks
//
// Boolean tensors are masks: true keeps a position. They support the data
// movement ops (Reshape, Expand, Transpose, Cat) so a mask can follow its
// input through flattening and head splitting.
package tensor
