// Package perceiver implements the Perceiver classifier: a fixed-size latent
// array repeatedly cross-attends to an arbitrary-rank input grid and refines
// itself with latent self-attention before a pooled classification head.
package perceiver

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/perceiver/internal/nn"
	"github.com/born-ml/perceiver/internal/tensor"
)

// SelfBlock is one latent self-attention step: attention then feed-forward,
// each added onto the latents.
type SelfBlock[B tensor.Backend] struct {
	Attn *nn.PreNormSelfAttention[B]
	FF   *nn.PreNorm[B]
}

// LayerGroup is one depth position: cross-attention onto the input, its
// feed-forward, then SelfPerCrossAttn self blocks.
type LayerGroup[B tensor.Backend] struct {
	Cross      *nn.PreNormCrossAttention[B]
	CrossFF    *nn.PreNorm[B]
	SelfBlocks []SelfBlock[B]
}

// Model is a Perceiver classifier.
//
// Architecture:
//
//	input [B, *spatial, C] (+ Fourier features)  ->  context [B, N, D]
//	latents [L, d] broadcast to [B, L, d]
//	depth × (cross-attn + FF + SelfPerCrossAttn × (self-attn + FF)), all residual
//	mean over latents -> LayerNorm -> Linear -> logits [B, NumClasses]
//
// Forward only reads parameters, so one Model serves concurrent callers as
// long as nothing mutates its parameters or toggles Train/Eval meanwhile.
type Model[B tensor.Backend] struct {
	Latents *nn.Parameter[B] // [NumLatents, LatentDim]
	Norm    *nn.LayerNorm[B] // logits head normalization
	Head    *nn.Linear[B]    // LatentDim -> NumClasses

	cfg      Config
	backend  B
	layers   []LayerGroup[B]
	cache    *LayerCache[B]
	rotary   nn.RotaryService[B] // nil unless SelfAttnRelPos
	training bool
}

// New builds a model from cfg. The returned error wraps ErrInvalidConfig.
//
// Weight tying: depth index 0 always owns private sublayers. With
// WeightTieLayers every later index resolves its sublayers through the
// LayerCache, so indices 1.. share one instance per Role.
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model[B]{
		Latents: nn.NewParameter("latents", tensor.Randn(tensor.Shape{cfg.NumLatents, cfg.LatentDim}, backend)),
		Norm:    nn.NewLayerNorm(cfg.LatentDim, cfg.NormEps, backend),
		Head:    nn.NewLinear(cfg.LatentDim, cfg.NumClasses, backend),
		cfg:     cfg,
		backend: backend,
		cache:   NewLayerCache[B](),
	}
	if cfg.SelfAttnRelPos {
		m.rotary = nn.NewSinusoidalRotary(nn.DefaultRotaryTheta, backend)
	}

	m.layers = make([]LayerGroup[B], cfg.Depth)
	for i := range m.layers {
		tied := cfg.WeightTieLayers && i > 0
		group := LayerGroup[B]{
			Cross:      Resolve(m.cache, RoleCrossAttn, tied, m.newCrossAttention),
			CrossFF:    Resolve(m.cache, RoleCrossFF, tied, m.newFeedForward),
			SelfBlocks: make([]SelfBlock[B], cfg.SelfPerCrossAttn),
		}
		for j := range group.SelfBlocks {
			group.SelfBlocks[j] = SelfBlock[B]{
				Attn: Resolve(m.cache, RoleLatentAttn, tied, m.newSelfAttention),
				FF:   Resolve(m.cache, RoleLatentFF, tied, m.newFeedForward),
			}
		}
		m.layers[i] = group
	}

	slog.Debug("perceiver model built",
		"depth", cfg.Depth,
		"latents", cfg.NumLatents,
		"latent_dim", cfg.LatentDim,
		"context_dim", cfg.ContextDim(),
		"params", m.NumParameters(),
		"tied_roles", m.cache.Roles(),
		"backend", backend.Name())

	return m, nil
}

func (m *Model[B]) newCrossAttention() *nn.PreNormCrossAttention[B] {
	attn := nn.NewAttention(nn.AttentionConfig{
		QueryDim:   m.cfg.LatentDim,
		ContextDim: m.cfg.ContextDim(),
		Heads:      m.cfg.CrossHeads,
		DimHead:    m.cfg.CrossDimHead,
		Dropout:    m.cfg.AttnDropout,
	}, m.backend)
	return nn.NewPreNormCrossAttention(attn, m.cfg.NormEps, m.backend)
}

func (m *Model[B]) newSelfAttention() *nn.PreNormSelfAttention[B] {
	attn := nn.NewAttention(nn.AttentionConfig{
		QueryDim: m.cfg.LatentDim,
		Heads:    m.cfg.LatentHeads,
		DimHead:  m.cfg.LatentDimHead,
		Dropout:  m.cfg.AttnDropout,
	}, m.backend)
	return nn.NewPreNormSelfAttention(attn, m.cfg.NormEps, m.backend)
}

func (m *Model[B]) newFeedForward() *nn.PreNorm[B] {
	ff := nn.NewFeedForward(m.cfg.LatentDim, m.cfg.FFMult, m.cfg.FFDropout, m.backend)
	return nn.NewPreNorm(m.cfg.LatentDim, m.cfg.NormEps, nn.Module[B](ff), m.backend)
}

// Forward classifies input [batch, *spatial, InputChannels] and returns
// logits [batch, NumClasses].
//
// mask is optional. It has shape [b, *spatial] or [b, N] with N the product
// of the spatial sizes and b either batch or 1; true marks positions the
// latents may attend to. Every mask row must keep at least one position.
//
// Shape problems are reported as ErrShapeMismatch before any computation.
func (m *Model[B]) Forward(input *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B]) (*tensor.Tensor[float32, B], error) {
	latents, err := m.Encode(input, mask)
	if err != nil {
		return nil, err
	}
	pooled := latents.MeanDim(1, false)
	return m.Head.Forward(m.Norm.Forward(pooled)), nil
}

// Encode runs the layer stack and returns the refined latents
// [batch, NumLatents, LatentDim] without pooling or classification.
func (m *Model[B]) Encode(input *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B]) (*tensor.Tensor[float32, B], error) {
	context, keep, err := m.prepare(input, mask)
	if err != nil {
		return nil, err
	}
	batch := context.Shape()[0]

	x := m.Latents.Tensor().Unsqueeze(0).Expand(tensor.Shape{batch, m.cfg.NumLatents, m.cfg.LatentDim})

	// One table per call, shared by every self-attention. Cross-attention
	// never sees it.
	var rot nn.PositionRotation[B]
	if m.rotary != nil {
		rot = nn.NewPositionRotation(m.rotary, m.cfg.NumLatents, m.cfg.LatentDimHead)
	}

	for _, group := range m.layers {
		x = group.Cross.Forward(x, context, keep).Add(x)
		x = group.CrossFF.Forward(x).Add(x)
		for _, block := range group.SelfBlocks {
			x = block.Attn.Forward(x, rot).Add(x)
			x = block.FF.Forward(x).Add(x)
		}
	}
	return x, nil
}

// prepare validates input and mask, appends the Fourier features and
// flattens the spatial axes. It returns the context [batch, N, ContextDim]
// and the mask reshaped to [b, N] (nil without a mask).
func (m *Model[B]) prepare(
	input *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
) (*tensor.Tensor[float32, B], *tensor.Tensor[bool, B], error) {
	if input == nil {
		return nil, nil, fmt.Errorf("%w: nil input", ErrShapeMismatch)
	}

	shape := input.Shape()
	if len(shape) != m.cfg.InputAxis+2 {
		return nil, nil, fmt.Errorf("%w: input must have %d spatial axes [batch, *axes, channels], got shape %v",
			ErrShapeMismatch, m.cfg.InputAxis, shape)
	}
	if channels := shape[len(shape)-1]; channels != m.cfg.InputChannels {
		return nil, nil, fmt.Errorf("%w: input has %d channels, model expects %d",
			ErrShapeMismatch, channels, m.cfg.InputChannels)
	}
	if shape.NumElements() == 0 {
		return nil, nil, fmt.Errorf("%w: input has an empty axis: %v", ErrShapeMismatch, shape)
	}

	batch := shape[0]
	spatial := shape[1 : len(shape)-1].Clone()
	n := spatial.NumElements()

	var keep *tensor.Tensor[bool, B]
	if mask != nil {
		ms := mask.Shape()
		if len(ms) < 2 || (ms[0] != batch && ms[0] != 1) {
			return nil, nil, fmt.Errorf("%w: mask shape %v does not broadcast to batch %d",
				ErrShapeMismatch, ms, batch)
		}
		rest := ms[1:]
		if !rest.Equal(spatial) && (len(rest) != 1 || rest[0] != n) {
			return nil, nil, fmt.Errorf("%w: mask shape %v fits neither [b, %v] nor [b, %d]",
				ErrShapeMismatch, ms, spatial, n)
		}
		keep = mask.Reshape(ms[0], n)
	}

	data := input
	if m.cfg.FourierEncodeData {
		pos, err := nn.FourierPositions(spatial, m.cfg.MaxFreq, m.cfg.NumFreqBands, m.cfg.FreqBase, m.backend)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		pos = pos.Unsqueeze(0).Expand(append(tensor.Shape{batch}, pos.Shape()...))
		data = tensor.Cat([]*tensor.Tensor[float32, B]{data, pos}, -1)
	}

	return data.Reshape(batch, n, m.cfg.ContextDim()), keep, nil
}

// Train switches dropout on in every sublayer.
func (m *Model[B]) Train() {
	m.setTraining(true)
}

// Eval switches dropout off. A new model starts in eval mode.
func (m *Model[B]) Eval() {
	m.setTraining(false)
}

// Training reports whether the model is in training mode.
func (m *Model[B]) Training() bool {
	return m.training
}

func (m *Model[B]) setTraining(training bool) {
	m.training = training
	for _, group := range m.layers {
		group.Cross.SetTraining(training)
		group.CrossFF.SetTraining(training)
		for _, block := range group.SelfBlocks {
			block.Attn.SetTraining(training)
			block.FF.SetTraining(training)
		}
	}
}

// Parameters returns every parameter once, even when tied sublayers appear
// at several depth positions. Order: latents, layer groups, logits head.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	seen := make(map[*nn.Parameter[B]]struct{})
	var params []*nn.Parameter[B]
	add := func(ps []*nn.Parameter[B]) {
		for _, p := range ps {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			params = append(params, p)
		}
	}

	add([]*nn.Parameter[B]{m.Latents})
	for _, group := range m.layers {
		add(group.Cross.Parameters())
		add(group.CrossFF.Parameters())
		for _, block := range group.SelfBlocks {
			add(block.Attn.Parameters())
			add(block.FF.Parameters())
		}
	}
	add(m.Norm.Parameters())
	add(m.Head.Parameters())
	return params
}

// NumParameters returns the number of distinct scalar parameters.
func (m *Model[B]) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// Layers returns the layer groups in depth order. Tied positions hold the
// same pointers.
func (m *Model[B]) Layers() []LayerGroup[B] {
	return m.layers
}

// Cache returns the weight-tying registry.
func (m *Model[B]) Cache() *LayerCache[B] {
	return m.cache
}

// Config returns the configuration the model was built from.
func (m *Model[B]) Config() Config {
	return m.cfg
}

// Backend returns the compute backend.
func (m *Model[B]) Backend() B {
	return m.backend
}
