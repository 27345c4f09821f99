package perceiver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 26, cfg.FourierChannels())
	assert.Equal(t, 29, cfg.ContextDim())

	cfg.FourierEncodeData = false
	assert.Equal(t, 0, cfg.FourierChannels())
	assert.Equal(t, 3, cfg.ContextDim())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero depth", func(c *Config) { c.Depth = 0 }, "depth"},
		{"zero latents", func(c *Config) { c.NumLatents = 0 }, "num_latents"},
		{"negative latent dim", func(c *Config) { c.LatentDim = -1 }, "latent_dim"},
		{"zero input axis", func(c *Config) { c.InputAxis = 0 }, "input_axis"},
		{"zero channels", func(c *Config) { c.InputChannels = 0 }, "input_channels"},
		{"zero classes", func(c *Config) { c.NumClasses = 0 }, "num_classes"},
		{"zero cross heads", func(c *Config) { c.CrossHeads = 0 }, "cross_heads"},
		{"zero latent dim head", func(c *Config) { c.LatentDimHead = 0 }, "latent_dim_head"},
		{"zero ff mult", func(c *Config) { c.FFMult = 0 }, "ff_mult"},
		{"negative self blocks", func(c *Config) { c.SelfPerCrossAttn = -1 }, "self_per_cross_attn"},
		{"zero bands", func(c *Config) { c.NumFreqBands = 0 }, "num_freq_bands"},
		{"zero max freq", func(c *Config) { c.MaxFreq = 0 }, "max_freq"},
		{"base one", func(c *Config) { c.FreqBase = 1 }, "freq_base"},
		{"attn dropout one", func(c *Config) { c.AttnDropout = 1 }, "attn_dropout"},
		{"negative ff dropout", func(c *Config) { c.FFDropout = -0.1 }, "ff_dropout"},
		{"zero eps", func(c *Config) { c.NormEps = 0 }, "norm_eps"},
		{"odd rotary head", func(c *Config) { c.LatentDimHead = 7 }, "latent_dim_head"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_ValidateAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FourierEncodeData = false
	cfg.NumFreqBands = 0
	cfg.SelfAttnRelPos = false
	cfg.LatentDimHead = 7
	cfg.SelfPerCrossAttn = 0
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Depth = 0
	cfg.NumLatents = 0
	cfg.NormEps = -1

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	msg := err.Error()
	for _, field := range []string{"depth", "num_latents", "norm_eps"} {
		assert.Contains(t, msg, field)
	}
	assert.Len(t, strings.Split(msg, "\n"), 3)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
depth: 2
weight_tie_layers: true
num_latents: 16
fourier_encode_data: false
`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Depth = 2
	want.WeightTieLayers = true
	want.NumLatents = 16
	want.FourierEncodeData = false
	assert.Equal(t, want, cfg)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "depthh: 3\n"},
		{"wrong type", "depth: many\n"},
		{"invalid value", "depth: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perceiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latent_dim: 64\nlatent_heads: 4\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.LatentDim)
	assert.Equal(t, 4, cfg.LatentHeads)
	assert.Equal(t, DefaultConfig().Depth, cfg.Depth)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
