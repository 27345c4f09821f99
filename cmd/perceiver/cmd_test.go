package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/perceiver"
)

const smallYAML = `
depth: 2
num_latents: 4
latent_dim: 8
latent_heads: 2
latent_dim_head: 4
cross_dim_head: 4
num_freq_bands: 2
num_classes: 5
weight_tie_layers: true
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallYAML), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "perceiver "+version+"\n", out)
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "--config", writeConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, "ROLE")
	assert.Contains(t, out, "latent_attn")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "tied roles: cross_attn, cross_ff, latent_attn, latent_ff")
}

func TestInspectYAML(t *testing.T) {
	out, err := execute(t, "inspect", "--yaml", "--config", writeConfig(t))
	require.NoError(t, err)

	cfg, err := perceiver.ParseConfig(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Depth)
	assert.True(t, cfg.WeightTieLayers)
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "--config", writeConfig(t), "--batch", "2", "--shape", "3,4", "--top", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "EXAMPLE")
	assert.Contains(t, out, "LOGIT")
}

func TestRun_ShapeMismatch(t *testing.T) {
	_, err := execute(t, "run", "--config", writeConfig(t), "--shape", "3,4,5")
	assert.True(t, errors.Is(err, perceiver.ErrShapeMismatch))
}

func TestClassifyBytes(t *testing.T) {
	out, err := execute(t, "classify", "--config", writeConfig(t), "--encoding", "bytes", "hello", "world")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}

func TestClassify_EmptyText(t *testing.T) {
	_, err := execute(t, "classify", "--config", writeConfig(t), "--encoding", "bytes", "")
	assert.ErrorIs(t, err, perceiver.ErrShapeMismatch)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("depth: 0\n"), 0o600))

	_, err := execute(t, "inspect", "--config", path)
	assert.ErrorIs(t, err, perceiver.ErrInvalidConfig)
}

func TestTopK(t *testing.T) {
	assert.Equal(t, []int{2, 0}, topK([]float32{0.5, -1, 3, 0.1}, 2))
}

func TestInitAndRunWithWeights(t *testing.T) {
	weights := filepath.Join(t.TempDir(), "model.safetensors")

	out, err := execute(t, "init", "--config", writeConfig(t), "--out", weights)
	require.NoError(t, err)
	assert.Contains(t, out, weights)

	cfg, err := perceiver.ReadCheckpointConfig(weights)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NumClasses)

	out, err = execute(t, "run", "--weights", weights, "--shape", "2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "EXAMPLE")
}

func TestRun_MissingWeights(t *testing.T) {
	_, err := execute(t, "run", "--weights", filepath.Join(t.TempDir(), "nope.safetensors"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
