// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/backend/cpu"
	"github.com/born-ml/perceiver/tensor"
)

func TestPublicCreation(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, x.DType())

	y := x.Add(tensor.Ones(tensor.Shape{2}, backend))
	assert.Equal(t, []float32{2, 3, 4, 5}, y.Data())

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)

	assert.Equal(t, []float32{-1, 0, 1}, tensor.Linspace(-1, 1, 3, backend).Data())
}

func TestPublicWhere(t *testing.T) {
	backend := cpu.New()
	keep := tensor.MustFromSlice([]bool{true, false}, tensor.Shape{1, 2}, backend)
	x := tensor.Full[float32](tensor.Shape{2, 2}, 1, backend)
	y := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)

	assert.Equal(t, []float32{1, 0, 1, 0}, tensor.Where(keep, x, y).Data())
	assert.Equal(t, tensor.Shape{2, 4}, tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{x, y}, -1).Shape())
}

func TestPublicBroadcastShapes(t *testing.T) {
	shape, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{1, 4})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, shape)

	_, err = tensor.BroadcastShapes(tensor.Shape{3}, tensor.Shape{4})
	assert.Error(t, err)
}
