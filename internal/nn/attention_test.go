package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/tensor"
)

func boolMask(t *testing.T, data []bool, shape ...int) *tensor.Tensor[bool, Backend] {
	t.Helper()
	m, err := tensor.FromSlice(data, tensor.Shape(shape), newBackend())
	require.NoError(t, err)
	return m
}

func TestAttention_Shapes(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, ContextDim: 6, Heads: 2, DimHead: 4}, backend)

	x := tensor.Randn(tensor.Shape{2, 5, 8}, backend)
	ctx := tensor.Randn(tensor.Shape{2, 7, 6}, backend)
	out, weights := attn.ForwardWithWeights(x, ctx, nil, PositionRotation[Backend]{})

	assert.Equal(t, tensor.Shape{2, 5, 8}, out.Shape())
	assert.Equal(t, tensor.Shape{4, 5, 7}, weights.Shape())

	w := weights.Data()
	for row := 0; row < 4*5; row++ {
		var sum float32
		for j := 0; j < 7; j++ {
			sum += w[row*7+j]
		}
		assert.InDelta(t, 1, sum, 1e-5)
	}

	assert.Equal(t, 8, attn.QueryDim())
	assert.Equal(t, 6, attn.ContextDim())
	assert.Equal(t, 2, attn.Heads())
	assert.Equal(t, 4, attn.DimHead())
	assert.Len(t, attn.Parameters(), 4)
}

func TestAttention_SelfDefaultsContext(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, Heads: 2, DimHead: 4}, backend)
	assert.Equal(t, 8, attn.ContextDim())

	x := tensor.Randn(tensor.Shape{1, 3, 8}, backend)
	self := attn.Forward(x, nil, nil, PositionRotation[Backend]{})
	explicit := attn.Forward(x, x, nil, PositionRotation[Backend]{})
	assert.Equal(t, explicit.Data(), self.Data())
}

func TestAttention_MaskedWeightsAreZero(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, ContextDim: 6, Heads: 2, DimHead: 4}, backend)

	mask := boolMask(t, []bool{
		true, false, true, true, true, false, true,
		false, true, true, true, true, true, true,
	}, 2, 7)
	x := tensor.Randn(tensor.Shape{2, 5, 8}, backend)
	ctx := tensor.Randn(tensor.Shape{2, 7, 6}, backend)
	_, weights := attn.ForwardWithWeights(x, ctx, mask, PositionRotation[Backend]{})

	w := weights.Data()
	keep := mask.Data()
	for b := 0; b < 2; b++ {
		for h := 0; h < 2; h++ {
			for i := 0; i < 5; i++ {
				var sum float32
				for j := 0; j < 7; j++ {
					v := w[(((b*2+h)*5)+i)*7+j]
					if !keep[b*7+j] {
						assert.Zero(t, v, "batch %d head %d query %d key %d", b, h, i, j)
					}
					sum += v
				}
				assert.InDelta(t, 1, sum, 1e-5)
			}
		}
	}
}

func TestAttention_MaskedContextIsIgnored(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 4, ContextDim: 3, Heads: 1, DimHead: 4}, backend)

	mask := boolMask(t, []bool{true, true, false, false}, 1, 4)
	x := tensor.Randn(tensor.Shape{1, 2, 4}, backend)
	ctx := tensor.Randn(tensor.Shape{1, 4, 3}, backend)

	perturbed := ctx.Clone()
	data := perturbed.Data()
	for i := 6; i < 12; i++ {
		data[i] = 100 + float32(i)
	}

	want := attn.Forward(x, ctx, mask, PositionRotation[Backend]{})
	got := attn.Forward(x, perturbed, mask, PositionRotation[Backend]{})
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-6)
}

func TestAttention_SharedMaskBroadcasts(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 4, Heads: 2, DimHead: 2}, backend)

	x := tensor.Randn(tensor.Shape{2, 3, 4}, backend)
	ctx := tensor.Randn(tensor.Shape{2, 5, 4}, backend)
	shared := boolMask(t, []bool{true, false, true, true, false}, 1, 5)
	full := boolMask(t, []bool{
		true, false, true, true, false,
		true, false, true, true, false,
	}, 2, 5)

	a := attn.Forward(x, ctx, shared, PositionRotation[Backend]{})
	b := attn.Forward(x, ctx, full, PositionRotation[Backend]{})
	assert.Equal(t, b.Data(), a.Data())
}

func TestAttention_SinglePositionRotationIsIdentity(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, Heads: 2, DimHead: 4}, backend)
	rot := NewPositionRotation[Backend](NewSinusoidalRotary(0, backend), 1, 4)

	x := tensor.Randn(tensor.Shape{2, 1, 8}, backend)
	plain := attn.Forward(x, nil, nil, PositionRotation[Backend]{})
	rotated := attn.Forward(x, nil, nil, rot)
	assert.InDeltaSlice(t, plain.Data(), rotated.Data(), 1e-6)
}

func TestAttention_Panics(t *testing.T) {
	backend := newBackend()
	attn := NewAttention(AttentionConfig{QueryDim: 8, ContextDim: 6, Heads: 2, DimHead: 4}, backend)
	x := tensor.Randn(tensor.Shape{2, 5, 8}, backend)

	tests := []struct {
		name string
		fn   func()
	}{
		{"zero heads", func() { NewAttention(AttentionConfig{QueryDim: 8, Heads: 0, DimHead: 4}, backend) }},
		{"query width", func() {
			attn.Forward(tensor.Randn(tensor.Shape{2, 5, 7}, backend), tensor.Randn(tensor.Shape{2, 7, 6}, backend), nil, PositionRotation[Backend]{})
		}},
		{"context width", func() {
			attn.Forward(x, tensor.Randn(tensor.Shape{2, 7, 5}, backend), nil, PositionRotation[Backend]{})
		}},
		{"context batch", func() {
			attn.Forward(x, tensor.Randn(tensor.Shape{3, 7, 6}, backend), nil, PositionRotation[Backend]{})
		}},
		{"mask length", func() {
			attn.Forward(x, tensor.Randn(tensor.Shape{2, 7, 6}, backend), tensor.Full(tensor.Shape{2, 6}, true, backend), PositionRotation[Backend]{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}
