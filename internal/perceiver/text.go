package perceiver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/perceiver/internal/nn"
	"github.com/born-ml/perceiver/internal/parallel"
	"github.com/born-ml/perceiver/internal/tensor"
	"github.com/born-ml/perceiver/internal/tokenizer"
)

// TextClassifier runs a Perceiver over token sequences.
//
// Texts are tokenized, right-padded to the longest one and embedded to
// InputChannels features per token. The sequence is a 1-axis input and the
// padding mask becomes the cross-attention mask, so padded positions get
// zero attention weight.
type TextClassifier[B tensor.Backend] struct {
	Tokenizer tokenizer.Tokenizer
	Embed     *nn.Embedding[B] // [VocabSize, InputChannels]
	Model     *Model[B]

	parallel parallel.Config
}

// NewTextClassifier builds the embedding and the model. cfg.InputAxis is
// forced to 1.
func NewTextClassifier[B tensor.Backend](cfg Config, tok tokenizer.Tokenizer, backend B) (*TextClassifier[B], error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: nil tokenizer", ErrInvalidConfig)
	}
	if cfg.InputAxis != 1 {
		slog.Debug("text classifier overrides input_axis", "from", cfg.InputAxis, "to", 1)
		cfg.InputAxis = 1
	}

	model, err := New(cfg, backend)
	if err != nil {
		return nil, err
	}
	return &TextClassifier[B]{
		Tokenizer: tok,
		Embed:     nn.NewEmbedding(tok.VocabSize(), cfg.InputChannels, backend),
		Model:     model,
		parallel:  parallel.DefaultConfig(),
	}, nil
}

// Encode tokenizes texts and returns the embedded batch
// [len(texts), seqLen, InputChannels] and its mask [len(texts), seqLen].
// A text with no tokens is an ErrShapeMismatch: it would leave cross-attention
// nothing to attend to.
func (c *TextClassifier[B]) Encode(texts []string) (*tensor.Tensor[float32, B], *tensor.Tensor[bool, B], error) {
	batch, err := tokenizer.EncodeBatch(c.Tokenizer, texts, c.parallel)
	if err != nil {
		if errors.Is(err, tokenizer.ErrEmptyText) {
			return nil, nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		return nil, nil, err
	}

	backend := c.Model.Backend()
	shape := tensor.Shape{batch.Size, batch.SeqLen}
	ids, err := tensor.FromSlice(batch.IDs, shape, backend)
	if err != nil {
		return nil, nil, err
	}
	mask, err := tensor.FromSlice(batch.Mask, shape, backend)
	if err != nil {
		return nil, nil, err
	}
	return c.Embed.Forward(ids), mask, nil
}

// Classify returns the logits [len(texts), NumClasses].
func (c *TextClassifier[B]) Classify(texts []string) (*tensor.Tensor[float32, B], error) {
	x, mask, err := c.Encode(texts)
	if err != nil {
		return nil, err
	}
	return c.Model.Forward(x, mask)
}

// Parameters returns the embedding table followed by the model parameters.
func (c *TextClassifier[B]) Parameters() []*nn.Parameter[B] {
	return append(c.Embed.Parameters(), c.Model.Parameters()...)
}
