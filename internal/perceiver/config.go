package perceiver

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the construction parameters of a Perceiver model.
type Config struct {
	// Fourier position encoding of the input grid.
	NumFreqBands      int     `yaml:"num_freq_bands"`
	MaxFreq           float64 `yaml:"max_freq"`
	FreqBase          float64 `yaml:"freq_base"`
	FourierEncodeData bool    `yaml:"fourier_encode_data"`

	// Input array: [batch, *spatial (InputAxis axes), InputChannels].
	InputChannels int `yaml:"input_channels"`
	InputAxis     int `yaml:"input_axis"`

	// Latent array.
	NumLatents int `yaml:"num_latents"`
	LatentDim  int `yaml:"latent_dim"`

	// Depth is the number of cross-attention layer groups.
	Depth            int  `yaml:"depth"`
	SelfPerCrossAttn int  `yaml:"self_per_cross_attn"`
	WeightTieLayers  bool `yaml:"weight_tie_layers"`

	CrossHeads    int `yaml:"cross_heads"`
	LatentHeads   int `yaml:"latent_heads"`
	CrossDimHead  int `yaml:"cross_dim_head"`
	LatentDimHead int `yaml:"latent_dim_head"`

	// SelfAttnRelPos enables rotary positions in latent self-attention.
	SelfAttnRelPos bool `yaml:"self_attn_rel_pos"`

	NumClasses int `yaml:"num_classes"`

	AttnDropout float32 `yaml:"attn_dropout"`
	FFDropout   float32 `yaml:"ff_dropout"`
	FFMult      int     `yaml:"ff_mult"`
	NormEps     float32 `yaml:"norm_eps"`
}

// DefaultConfig returns the reference configuration: a 2D, 3-channel input
// classified into 1000 classes.
func DefaultConfig() Config {
	return Config{
		NumFreqBands:      6,
		MaxFreq:           10,
		FreqBase:          2,
		FourierEncodeData: true,
		InputChannels:     3,
		InputAxis:         2,
		NumLatents:        512,
		LatentDim:         512,
		Depth:             6,
		SelfPerCrossAttn:  1,
		WeightTieLayers:   false,
		CrossHeads:        1,
		LatentHeads:       8,
		CrossDimHead:      64,
		LatentDimHead:     64,
		SelfAttnRelPos:    true,
		NumClasses:        1000,
		AttnDropout:       0,
		FFDropout:         0,
		FFMult:            4,
		NormEps:           1e-5,
	}
}

// Validate reports every invalid field. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	positive := []struct {
		name  string
		value int
	}{
		{"depth", c.Depth},
		{"num_latents", c.NumLatents},
		{"latent_dim", c.LatentDim},
		{"input_channels", c.InputChannels},
		{"input_axis", c.InputAxis},
		{"num_classes", c.NumClasses},
		{"cross_heads", c.CrossHeads},
		{"latent_heads", c.LatentHeads},
		{"cross_dim_head", c.CrossDimHead},
		{"latent_dim_head", c.LatentDimHead},
		{"ff_mult", c.FFMult},
	}
	for _, f := range positive {
		if f.value <= 0 {
			invalid("%s must be positive, got %d", f.name, f.value)
		}
	}

	if c.SelfPerCrossAttn < 0 {
		invalid("self_per_cross_attn must not be negative, got %d", c.SelfPerCrossAttn)
	}

	if c.FourierEncodeData {
		if c.NumFreqBands <= 0 {
			invalid("num_freq_bands must be positive, got %d", c.NumFreqBands)
		}
		if c.MaxFreq <= 0 {
			invalid("max_freq must be positive, got %g", c.MaxFreq)
		}
		if c.FreqBase <= 0 || c.FreqBase == 1 {
			invalid("freq_base must be positive and not 1, got %g", c.FreqBase)
		}
	}

	if c.AttnDropout < 0 || c.AttnDropout >= 1 {
		invalid("attn_dropout must be in [0, 1), got %g", c.AttnDropout)
	}
	if c.FFDropout < 0 || c.FFDropout >= 1 {
		invalid("ff_dropout must be in [0, 1), got %g", c.FFDropout)
	}
	if c.NormEps <= 0 {
		invalid("norm_eps must be positive, got %g", c.NormEps)
	}

	if c.SelfAttnRelPos && c.LatentDimHead%2 != 0 {
		invalid("latent_dim_head must be even with self_attn_rel_pos, got %d", c.LatentDimHead)
	}

	return errors.Join(errs...)
}

// FourierChannels returns the number of positional channels appended to the
// input, 0 when Fourier encoding is disabled.
func (c Config) FourierChannels() int {
	if !c.FourierEncodeData {
		return 0
	}
	return c.InputAxis * (2*c.NumFreqBands + 1)
}

// ContextDim returns the channel width of the flattened context seen by
// cross-attention.
func (c Config) ContextDim() int {
	return c.InputChannels + c.FourierChannels()
}

// ParseConfig decodes YAML from r on top of DefaultConfig and validates the
// result. Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file. See ParseConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller-chosen config path
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
