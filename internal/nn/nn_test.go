package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/backend/cpu"
	"github.com/born-ml/perceiver/internal/tensor"
)

type Backend = *cpu.CPUBackend

func newBackend() Backend {
	return cpu.New()
}

func fromSlice(t *testing.T, data []float32, shape ...int) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), newBackend())
	require.NoError(t, err)
	return x
}

func TestLinear_Forward(t *testing.T) {
	backend := newBackend()
	l := NewLinear(2, 3, backend)
	require.NoError(t, l.Weight().Load([]float32{1, 0, 0, 1, 1, 1}))
	require.NoError(t, l.Bias().Load([]float32{0.5, 0, -1}))

	out := l.Forward(fromSlice(t, []float32{1, 2, 3, 4}, 1, 2, 2))

	assert.Equal(t, tensor.Shape{1, 2, 3}, out.Shape())
	assert.Equal(t, []float32{1.5, 2, 2, 3.5, 4, 6}, out.Data())
	assert.Len(t, l.Parameters(), 2)
}

func TestLinear_WithoutBias(t *testing.T) {
	l := NewLinear(4, 2, newBackend(), WithBias(false))
	assert.Nil(t, l.Bias())
	assert.Len(t, l.Parameters(), 1)
	assert.Equal(t, tensor.Shape{2, 4}, l.Weight().Shape())
}

func TestLinear_Panics(t *testing.T) {
	backend := newBackend()
	assert.Panics(t, func() { NewLinear(0, 2, backend) })

	l := NewLinear(3, 2, backend)
	assert.Panics(t, func() { l.Forward(fromSlice(t, []float32{1, 2}, 1, 2)) })
}

func TestParameter_Load(t *testing.T) {
	p := NewParameter("w", tensor.Zeros[float32](tensor.Shape{2, 2}, newBackend()))
	assert.Error(t, p.Load([]float32{1, 2, 3}))
	require.NoError(t, p.Load([]float32{1, 2, 3, 4}))
	assert.Equal(t, []float32{1, 2, 3, 4}, p.Tensor().Data())

	p.Fill(7)
	assert.Equal(t, []float32{7, 7, 7, 7}, p.Tensor().Data())
	assert.Equal(t, 4, CountParameters([]*Parameter[Backend]{p}))
}

func TestLayerNorm_Forward(t *testing.T) {
	ln := NewLayerNorm(4, 1e-5, newBackend())
	out := ln.Forward(fromSlice(t, []float32{1, 2, 3, 4, -10, 0, 10, 20}, 2, 4)).Data()

	for row := 0; row < 2; row++ {
		vals := out[row*4 : row*4+4]
		var mean, sq float32
		for _, v := range vals {
			mean += v
		}
		mean /= 4
		for _, v := range vals {
			sq += (v - mean) * (v - mean)
		}
		assert.InDelta(t, 0, mean, 1e-5)
		assert.InDelta(t, 1, sq/4, 1e-3)
	}

	ln.Gamma.Fill(2)
	ln.Beta.Fill(1)
	scaled := ln.Forward(fromSlice(t, []float32{1, 2, 3, 4}, 1, 4)).Data()
	assert.InDelta(t, 1+2*(-1.3416), scaled[0], 1e-3)
}

func TestDropout(t *testing.T) {
	backend := newBackend()
	x := tensor.Ones(tensor.Shape{1000}, backend)

	d := NewDropout[Backend](0.5)
	assert.Same(t, x, d.Forward(x), "inference mode is the identity")

	d.SetTraining(true)
	out := d.Forward(x).Data()
	zeros := 0
	for _, v := range out {
		require.True(t, v == 0 || v == 2, "unexpected value %v", v)
		if v == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 300)
	assert.Less(t, zeros, 700)

	assert.Panics(t, func() { NewDropout[Backend](1) })
}

func TestEmbedding(t *testing.T) {
	backend := newBackend()
	e := NewEmbedding(5, 3, backend)
	ids := tensor.MustFromSlice([]int32{4, 0}, tensor.Shape{1, 2}, backend)

	out := e.Forward(ids)
	assert.Equal(t, tensor.Shape{1, 2, 3}, out.Shape())
	assert.Equal(t, e.Weight.Tensor().Data()[12:15], out.Data()[:3])
}

func TestGELU(t *testing.T) {
	out := NewGELU[Backend]().Forward(fromSlice(t, []float32{-1, 0, 1}, 3)).Data()
	assert.InDelta(t, -0.1586553, out[0], 1e-6)
	assert.InDelta(t, 0, out[1], 1e-9)
	assert.InDelta(t, 0.8413447, out[2], 1e-6)
}

func TestFeedForward_Reference(t *testing.T) {
	backend := newBackend()
	ff := NewFeedForward(1, 1, 0, backend)
	require.NoError(t, ff.In.Weight().Load([]float32{2, 1}))
	require.NoError(t, ff.Out.Weight().Load([]float32{3}))
	require.NoError(t, ff.Out.Bias().Load([]float32{0.5}))

	// h = [2, 1]; 2 * gelu(1) * 3 + 0.5
	out := ff.Forward(fromSlice(t, []float32{1}, 1, 1, 1))
	assert.Equal(t, tensor.Shape{1, 1, 1}, out.Shape())
	assert.InDelta(t, 2*0.8413447*3+0.5, out.Data()[0], 1e-5)
}

func TestFeedForward_Shapes(t *testing.T) {
	backend := newBackend()
	ff := NewFeedForward(8, 0, 0, backend)
	assert.Equal(t, DefaultFeedForwardMult, ff.Mult())
	assert.Equal(t, tensor.Shape{64, 8}, ff.In.Weight().Shape())
	assert.Equal(t, tensor.Shape{8, 32}, ff.Out.Weight().Shape())

	out := ff.Forward(tensor.Randn(tensor.Shape{2, 5, 8}, backend))
	assert.Equal(t, tensor.Shape{2, 5, 8}, out.Shape())
	assert.Len(t, ff.Parameters(), 4)
}

func TestPreNorm_Unary(t *testing.T) {
	backend := newBackend()
	lin := NewLinear(4, 2, backend)
	p := NewPreNorm(4, DefaultLayerNormEpsilon, Module[Backend](lin), backend)

	x := tensor.Randn(tensor.Shape{3, 4}, backend)
	want := lin.Forward(p.Norm.Forward(x))
	assert.Equal(t, want.Data(), p.Forward(x).Data())
	assert.Len(t, p.Parameters(), 4)
}

func TestPreNormCrossAttention_IndependentNorms(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, ContextDim: 5, Heads: 2, DimHead: 4}, backend)
	p := NewPreNormCrossAttention(attn, DefaultLayerNormEpsilon, backend)

	assert.NotSame(t, p.Norm.Gamma, p.ContextNorm.Gamma)
	assert.Equal(t, tensor.Shape{8}, p.Norm.Gamma.Shape())
	assert.Equal(t, tensor.Shape{5}, p.ContextNorm.Gamma.Shape())
	assert.Len(t, p.Parameters(), 2+2+4)

	out := p.Forward(tensor.Randn(tensor.Shape{2, 3, 8}, backend), tensor.Randn(tensor.Shape{2, 6, 5}, backend), nil)
	assert.Equal(t, tensor.Shape{2, 3, 8}, out.Shape())
}
