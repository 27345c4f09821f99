package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/parallel"
)

func TestBytes(t *testing.T) {
	tok := NewBytes()
	ids, err := tok.Encode("hé")
	require.NoError(t, err)
	assert.Equal(t, []int32{'h', 0xc3, 0xa9}, ids)
	assert.Equal(t, 257, tok.VocabSize())
	assert.Equal(t, "bytes", tok.Name())

	text, err := tok.Decode(append(ids, tok.PadToken(), tok.PadToken()))
	require.NoError(t, err)
	assert.Equal(t, "hé", text)

	_, err = tok.Decode([]int32{300})
	assert.Error(t, err)
}

func TestEncodeBatch(t *testing.T) {
	configs := map[string]parallel.Config{
		"sequential": {Enabled: false},
		"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 1},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			b, err := EncodeBatch(NewBytes(), []string{"abc", "x", "hello"}, cfg)
			require.NoError(t, err)

			assert.Equal(t, 3, b.Size)
			assert.Equal(t, 5, b.SeqLen)
			assert.Equal(t, []int32{'a', 'b', 'c', 256, 256}, b.Row(0))
			assert.Equal(t, []int32{'x', 256, 256, 256, 256}, b.Row(1))
			assert.Equal(t, []int32{'h', 'e', 'l', 'l', 'o'}, b.Row(2))
			assert.Equal(t, []bool{
				true, true, true, false, false,
				true, false, false, false, false,
				true, true, true, true, true,
			}, b.Mask)
			assert.Equal(t, []int{3, 1, 5}, b.Lengths())
		})
	}
}

type noPad struct{ *Bytes }

func (noPad) PadToken() int32 { return -1 }

func TestEncodeBatch_PadsWithZeroWithoutPadToken(t *testing.T) {
	b, err := EncodeBatch(noPad{NewBytes()}, []string{"ab", "c"}, parallel.Config{})
	require.NoError(t, err)
	assert.Equal(t, []int32{'c', 0}, b.Row(1))
	assert.Equal(t, []bool{true, true, true, false}, b.Mask)
}

func TestEncodeBatch_Errors(t *testing.T) {
	_, err := EncodeBatch(NewBytes(), nil, parallel.DefaultConfig())
	assert.Error(t, err)

	_, err = EncodeBatch(NewBytes(), []string{"ok", ""}, parallel.DefaultConfig())
	assert.True(t, errors.Is(err, ErrEmptyText))
}
