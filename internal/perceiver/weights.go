package perceiver

import (
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/perceiver/internal/nn"
	"github.com/born-ml/perceiver/internal/serialization"
	"github.com/born-ml/perceiver/internal/tensor"
)

// Checkpoint metadata keys.
const (
	metaFormat = "format"
	metaConfig = "config"

	checkpointFormat = "perceiver"
)

// stateDict collects hierarchical parameter names. A parameter reachable
// from several tied positions keeps the first name it was seen under.
type stateDict[B tensor.Backend] struct {
	seen    map[*nn.Parameter[B]]struct{}
	entries *orderedmap.OrderedMap[string, *nn.Parameter[B]]
}

func (s *stateDict[B]) add(name string, p *nn.Parameter[B]) {
	if _, dup := s.seen[p]; dup {
		return
	}
	s.seen[p] = struct{}{}
	s.entries.Set(name, p)
}

func (s *stateDict[B]) linear(prefix string, l *nn.Linear[B]) {
	for _, p := range l.Parameters() {
		s.add(prefix+"."+p.Name(), p)
	}
}

func (s *stateDict[B]) norm(prefix string, n *nn.LayerNorm[B]) {
	s.add(prefix+".gamma", n.Gamma)
	s.add(prefix+".beta", n.Beta)
}

func (s *stateDict[B]) attention(prefix string, a *nn.Attention[B]) {
	s.linear(prefix+".to_q", a.ToQ)
	s.linear(prefix+".to_kv", a.ToKV)
	s.linear(prefix+".to_out", a.ToOut)
}

func (s *stateDict[B]) preNorm(prefix string, pre *nn.PreNorm[B]) {
	s.norm(prefix+".norm", pre.Norm)
	switch fn := pre.Fn.(type) {
	case *nn.FeedForward[B]:
		s.linear(prefix+".ff.in", fn.In)
		s.linear(prefix+".ff.out", fn.Out)
	default:
		for k, p := range pre.Parameters()[len(pre.Norm.Parameters()):] {
			s.add(fmt.Sprintf("%s.fn.%d", prefix, k), p)
		}
	}
}

// StateDict returns every distinct parameter keyed by a dotted path such as
// "layers.0.cross_attn.attn.to_q.weight", in the same order as Parameters.
func (m *Model[B]) StateDict() *orderedmap.OrderedMap[string, *nn.Parameter[B]] {
	s := &stateDict[B]{
		seen:    make(map[*nn.Parameter[B]]struct{}),
		entries: orderedmap.New[string, *nn.Parameter[B]](),
	}

	s.add("latents", m.Latents)
	for i, group := range m.layers {
		prefix := fmt.Sprintf("layers.%d", i)

		s.norm(prefix+"."+string(RoleCrossAttn)+".norm", group.Cross.Norm)
		s.norm(prefix+"."+string(RoleCrossAttn)+".context_norm", group.Cross.ContextNorm)
		s.attention(prefix+"."+string(RoleCrossAttn)+".attn", group.Cross.Attn)
		s.preNorm(prefix+"."+string(RoleCrossFF), group.CrossFF)

		for j, block := range group.SelfBlocks {
			blockPrefix := fmt.Sprintf("%s.self.%d", prefix, j)
			s.norm(blockPrefix+"."+string(RoleLatentAttn)+".norm", block.Attn.Norm)
			s.attention(blockPrefix+"."+string(RoleLatentAttn)+".attn", block.Attn.Attn)
			s.preNorm(blockPrefix+"."+string(RoleLatentFF), block.FF)
		}
	}
	s.norm("to_logits.norm", m.Norm)
	s.linear("to_logits.head", m.Head)
	return s.entries
}

// SaveWeights writes the model parameters and its config to a SafeTensors
// file at path.
func (m *Model[B]) SaveWeights(path string) error {
	cfg, err := yaml.Marshal(m.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	state := m.StateDict()
	tensors := make(map[string]*tensor.RawTensor, state.Len())
	for pair := state.Oldest(); pair != nil; pair = pair.Next() {
		tensors[pair.Key] = pair.Value.Tensor().Raw()
	}

	return serialization.SaveFile(path, tensors, map[string]string{
		metaFormat: checkpointFormat,
		metaConfig: string(cfg),
	})
}

// LoadWeights reads a file written by SaveWeights into the model.
func (m *Model[B]) LoadWeights(path string) error {
	f, err := serialization.LoadFile(path)
	if err != nil {
		return err
	}
	return m.LoadStateDict(f.Tensors)
}

// LoadStateDict copies tensors into the matching parameters. The tensor set
// must equal the StateDict names exactly with matching float32 shapes; on any
// mismatch nothing is loaded and the error wraps ErrCheckpointMismatch.
//
// LoadStateDict must not run concurrently with Forward.
func (m *Model[B]) LoadStateDict(tensors map[string]*tensor.RawTensor) error {
	state := m.StateDict()

	var errs []error
	for pair := state.Oldest(); pair != nil; pair = pair.Next() {
		raw, ok := tensors[pair.Key]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: missing %q", ErrCheckpointMismatch, pair.Key))
		case raw.DType() != tensor.Float32:
			errs = append(errs, fmt.Errorf("%w: %q has dtype %s, want float32",
				ErrCheckpointMismatch, pair.Key, raw.DType()))
		case !raw.Shape().Equal(pair.Value.Shape()):
			errs = append(errs, fmt.Errorf("%w: %q has shape %v, want %v",
				ErrCheckpointMismatch, pair.Key, raw.Shape(), pair.Value.Shape()))
		}
	}
	for name := range tensors {
		if _, ok := state.Get(name); !ok {
			errs = append(errs, fmt.Errorf("%w: unexpected %q", ErrCheckpointMismatch, name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for pair := state.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.Load(tensors[pair.Key].AsFloat32()); err != nil {
			return err
		}
	}
	return nil
}

// ReadCheckpointConfig returns the config stored alongside the weights at
// path.
func ReadCheckpointConfig(path string) (Config, error) {
	f, err := serialization.LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if f.Metadata[metaFormat] != checkpointFormat {
		return Config{}, fmt.Errorf("%w: %s is not a perceiver checkpoint", ErrCheckpointMismatch, path)
	}
	raw, ok := f.Metadata[metaConfig]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s carries no config", ErrCheckpointMismatch, path)
	}
	return ParseConfig(strings.NewReader(raw))
}
