package tokenizer

import (
	"errors"
	"fmt"

	"github.com/born-ml/perceiver/internal/parallel"
)

// ErrEmptyText is returned by EncodeBatch for a text that yields no tokens.
var ErrEmptyText = errors.New("text produced no tokens")

// Batch is a padded, row-major batch of token sequences.
type Batch struct {
	IDs    []int32 // [Size * SeqLen]
	Mask   []bool  // [Size * SeqLen], true on real tokens
	Size   int
	SeqLen int
}

// Row returns the IDs of sequence i including padding.
func (b *Batch) Row(i int) []int32 {
	return b.IDs[i*b.SeqLen : (i+1)*b.SeqLen]
}

// Lengths returns the unpadded length of every sequence.
func (b *Batch) Lengths() []int {
	lengths := make([]int, b.Size)
	for i := range lengths {
		for _, keep := range b.Mask[i*b.SeqLen : (i+1)*b.SeqLen] {
			if keep {
				lengths[i]++
			}
		}
	}
	return lengths
}

// EncodeBatch tokenizes texts concurrently and right-pads them to the longest
// sequence. Padding uses the tokenizer's pad ID, or 0 when it has none; the
// mask tells real tokens from padding either way.
//
// The tokenizer must be safe for concurrent Encode calls.
func EncodeBatch(tok Tokenizer, texts []string, cfg parallel.Config) (*Batch, error) {
	if len(texts) == 0 {
		return nil, errors.New("encode batch: no texts")
	}

	seqs := make([][]int32, len(texts))
	err := parallel.ForErr(len(texts), func(i int) error {
		ids, err := tok.Encode(texts[i])
		if err != nil {
			return fmt.Errorf("encode text %d: %w", i, err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("encode text %d: %w", i, ErrEmptyText)
		}
		seqs[i] = ids
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	seqLen := 0
	for _, s := range seqs {
		seqLen = max(seqLen, len(s))
	}

	pad := max(tok.PadToken(), 0)
	b := &Batch{
		IDs:    make([]int32, len(texts)*seqLen),
		Mask:   make([]bool, len(texts)*seqLen),
		Size:   len(texts),
		SeqLen: seqLen,
	}
	for i, s := range seqs {
		row := b.IDs[i*seqLen : (i+1)*seqLen]
		for j := range row {
			if j < len(s) {
				row[j] = s[j]
				b.Mask[i*seqLen+j] = true
			} else {
				row[j] = pad
			}
		}
	}
	return b, nil
}
