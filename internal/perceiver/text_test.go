package perceiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/backend/cpu"
	"github.com/born-ml/perceiver/internal/tensor"
	"github.com/born-ml/perceiver/internal/tokenizer"
)

func newTextClassifier(t *testing.T, fourier bool) *TextClassifier[Backend] {
	t.Helper()
	cfg := smallConfig()
	cfg.InputChannels = 6
	cfg.FourierEncodeData = fourier
	c, err := NewTextClassifier(cfg, tokenizer.NewBytes(), cpu.New())
	require.NoError(t, err)
	return c
}

func TestTextClassifier_Classify(t *testing.T) {
	c := newTextClassifier(t, true)
	assert.Equal(t, 1, c.Model.Config().InputAxis)
	assert.Equal(t, tensor.Shape{257, 6}, c.Embed.Weight.Shape())

	logits, err := c.Classify([]string{"hello", "hi", "a longer sentence"})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3}, logits.Shape())
	requireFinite(t, logits.Data())
}

func TestTextClassifier_Encode(t *testing.T) {
	c := newTextClassifier(t, false)

	x, mask, err := c.Encode([]string{"abc", "a"})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3, 6}, x.Shape())
	assert.Equal(t, []bool{true, true, true, true, false, false}, mask.Data())

	// Row for 'a' is the embedding of byte 97.
	assert.Equal(t, c.Embed.Weight.Tensor().Data()[97*6:98*6], x.Data()[:6])
}

func TestTextClassifier_PaddingIsIgnored(t *testing.T) {
	c := newTextClassifier(t, false)

	alone, err := c.Classify([]string{"hi"})
	require.NoError(t, err)
	batched, err := c.Classify([]string{"hi", "a much longer neighbour"})
	require.NoError(t, err)

	assert.InDeltaSlice(t, alone.Data(), batched.Data()[:3], 1e-5)
}

func TestTextClassifier_Errors(t *testing.T) {
	c := newTextClassifier(t, false)

	_, err := c.Classify([]string{"ok", ""})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewTextClassifier(smallConfig(), nil, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := smallConfig()
	cfg.Depth = 0
	_, err = NewTextClassifier(cfg, tokenizer.NewBytes(), cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
