package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/perceiver/internal/tensor"
)

// ScaledDotProductAttention computes softmax(Q·Kᵀ·scale)·V over batched heads.
//
// Parameters:
//   - query: [batch·heads, seq_q, head_dim]
//   - key: [batch·heads, seq_k, head_dim]
//   - value: [batch·heads, seq_k, head_dim]
//   - keep: optional bool mask broadcastable to [batch·heads, seq_q, seq_k];
//     false entries have their score replaced by -MaxFloat32 before softmax
//   - scale: multiplier applied to raw scores, 0 for 1/sqrt(head_dim)
//
// Returns the attended values [batch·heads, seq_q, head_dim] and the weights
// [batch·heads, seq_q, seq_k].
//
// Every row of keep must contain at least one true entry. A fully masked row
// degenerates to uniform weights.
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
	keep *tensor.Tensor[bool, B],
	scale float32,
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	if scale == 0 {
		scale = float32(1 / math.Sqrt(float64(query.Shape()[2])))
	}

	scores := query.BatchMatMul(key.Transpose(0, 2, 1)).MulScalar(scale)
	if keep != nil {
		fill := tensor.Full[float32](tensor.Shape{1}, -math.MaxFloat32, scores.Backend())
		scores = tensor.Where(keep, scores, fill)
	}

	weights := scores.Softmax(-1)
	return weights.BatchMatMul(value), weights
}

// AttentionConfig configures an Attention layer.
type AttentionConfig struct {
	QueryDim   int     // Width of the query input
	ContextDim int     // Width of the context input (0 = QueryDim)
	Heads      int     // Number of attention heads
	DimHead    int     // Width of each head
	Dropout    float32 // Output dropout probability (training only)
}

// Attention is multi-head scaled dot-product attention usable as self- or
// cross-attention.
//
// Architecture:
//
//	Q    = x @ W_q.T                    [B, Nq, heads·dim_head]
//	K, V = chunk(context @ W_kv.T, 2)   [B, Nc, heads·dim_head] each
//	heads are folded into the batch axis: [B·heads, N, dim_head]
//	Q, K are optionally rotated (rotary position)
//	out  = softmax(Q·Kᵀ / sqrt(dim_head), masked) · V
//	y    = Dropout(merge(out) @ W_out.T + b_out)   [B, Nq, QueryDim]
//
// The inner width heads·dim_head is independent of QueryDim; the output
// projection maps it back.
//
// Example:
//
//	cross := nn.NewAttention(nn.AttentionConfig{
//	    QueryDim: 512, ContextDim: 29, Heads: 1, DimHead: 64,
//	}, backend)
//	y := cross.Forward(latents, data, mask, nn.PositionRotation[B]{})
type Attention[B tensor.Backend] struct {
	ToQ     *Linear[B] // QueryDim -> inner, no bias
	ToKV    *Linear[B] // ContextDim -> 2·inner, no bias
	ToOut   *Linear[B] // inner -> QueryDim
	Dropout *Dropout[B]

	queryDim   int
	contextDim int
	heads      int
	dimHead    int
	scale      float32
}

// NewAttention creates a new Attention layer.
//
// Panics if any dimension is not positive.
func NewAttention[B tensor.Backend](cfg AttentionConfig, backend B) *Attention[B] {
	if cfg.ContextDim == 0 {
		cfg.ContextDim = cfg.QueryDim
	}
	if cfg.QueryDim <= 0 || cfg.ContextDim <= 0 || cfg.Heads <= 0 || cfg.DimHead <= 0 {
		panic(fmt.Sprintf("NewAttention: dimensions must be positive, got %+v", cfg))
	}

	inner := cfg.Heads * cfg.DimHead
	return &Attention[B]{
		ToQ:        NewLinear(cfg.QueryDim, inner, backend, WithBias(false)),
		ToKV:       NewLinear(cfg.ContextDim, 2*inner, backend, WithBias(false)),
		ToOut:      NewLinear(inner, cfg.QueryDim, backend),
		Dropout:    NewDropout[B](cfg.Dropout),
		queryDim:   cfg.QueryDim,
		contextDim: cfg.ContextDim,
		heads:      cfg.Heads,
		dimHead:    cfg.DimHead,
		scale:      float32(1 / math.Sqrt(float64(cfg.DimHead))),
	}
}

// Forward attends x [B, Nq, QueryDim] over context [B, Nc, ContextDim].
//
// A nil context means self-attention over x. mask, when non-nil, has shape
// [B, Nc] or [1, Nc] with true marking positions that may be attended to.
// rot is applied to queries and keys only.
func (a *Attention[B]) Forward(
	x, context *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
	rot PositionRotation[B],
) *tensor.Tensor[float32, B] {
	out, _ := a.ForwardWithWeights(x, context, mask, rot)
	return out
}

// ForwardWithWeights is Forward that also returns the attention weights
// [B·heads, Nq, Nc].
func (a *Attention[B]) ForwardWithWeights(
	x, context *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
	rot PositionRotation[B],
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	if context == nil {
		context = x
	}
	a.validate(x, context, mask)

	batch, nq, nc := x.Shape()[0], x.Shape()[1], context.Shape()[1]

	q := a.splitHeads(a.ToQ.Forward(x))
	kv := a.ToKV.Forward(context).Chunk(2, -1)
	k, v := a.splitHeads(kv[0]), a.splitHeads(kv[1])

	q, k = rot.Apply(q, k)

	var keep *tensor.Tensor[bool, B]
	if mask != nil {
		mb := mask.Shape()[0]
		keep = mask.Reshape(mb, 1, 1, nc).
			Expand(tensor.Shape{batch, a.heads, 1, nc}).
			Reshape(batch*a.heads, 1, nc)
	}

	attended, weights := ScaledDotProductAttention(q, k, v, keep, a.scale)

	merged := attended.
		Reshape(batch, a.heads, nq, a.dimHead).
		Transpose(0, 2, 1, 3).
		Reshape(batch, nq, a.heads*a.dimHead)

	return a.Dropout.Forward(a.ToOut.Forward(merged)), weights
}

// splitHeads reshapes [B, N, heads·dim_head] to [B·heads, N, dim_head].
func (a *Attention[B]) splitHeads(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s := x.Shape()
	return x.Reshape(s[0], s[1], a.heads, a.dimHead).
		Transpose(0, 2, 1, 3).
		Reshape(s[0]*a.heads, s[1], a.dimHead)
}

func (a *Attention[B]) validate(x, context *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B]) {
	xs, cs := x.Shape(), context.Shape()
	if len(xs) != 3 || xs[2] != a.queryDim {
		panic(fmt.Sprintf("Attention.Forward: expected query [batch, n, %d], got %v", a.queryDim, xs))
	}
	if len(cs) != 3 || cs[2] != a.contextDim || cs[0] != xs[0] {
		panic(fmt.Sprintf("Attention.Forward: expected context [%d, n, %d], got %v", xs[0], a.contextDim, cs))
	}
	if mask != nil {
		ms := mask.Shape()
		if len(ms) != 2 || ms[1] != cs[1] || (ms[0] != cs[0] && ms[0] != 1) {
			panic(fmt.Sprintf("Attention.Forward: expected mask [%d, %d], got %v", cs[0], cs[1], ms))
		}
	}
}

// SetTraining toggles the output dropout.
func (a *Attention[B]) SetTraining(training bool) {
	a.Dropout.SetTraining(training)
}

// Parameters returns the parameters of all three projections.
func (a *Attention[B]) Parameters() []*Parameter[B] {
	params := a.ToQ.Parameters()
	params = append(params, a.ToKV.Parameters()...)
	return append(params, a.ToOut.Parameters()...)
}

// QueryDim returns the query width.
func (a *Attention[B]) QueryDim() int { return a.queryDim }

// ContextDim returns the context width.
func (a *Attention[B]) ContextDim() int { return a.contextDim }

// Heads returns the number of heads.
func (a *Attention[B]) Heads() int { return a.heads }

// DimHead returns the width of each head.
func (a *Attention[B]) DimHead() int { return a.dimHead }
