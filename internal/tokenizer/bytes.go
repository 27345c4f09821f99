package tokenizer

import "fmt"

// Bytes maps every UTF-8 byte of the text to its own token (IDs 0..255).
// ID 256 is the padding token.
type Bytes struct{}

// bytePad is the padding ID of Bytes.
const bytePad = 256

// NewBytes returns a byte-level tokenizer.
func NewBytes() *Bytes {
	return &Bytes{}
}

// Encode returns the bytes of text as token IDs.
func (*Bytes) Encode(text string) ([]int32, error) {
	ids := make([]int32, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int32(text[i])
	}
	return ids, nil
}

// Decode reassembles the bytes. Padding IDs are skipped.
func (*Bytes) Decode(tokens []int32) (string, error) {
	buf := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == bytePad:
			continue
		case tok < 0 || tok > 255:
			return "", fmt.Errorf("bytes: invalid token %d", tok)
		}
		buf = append(buf, byte(tok))
	}
	return string(buf), nil
}

// VocabSize returns 257: the 256 byte values plus padding.
func (*Bytes) VocabSize() int {
	return bytePad + 1
}

// PadToken returns the padding ID.
func (*Bytes) PadToken() int32 {
	return bytePad
}

// Name returns "bytes".
func (*Bytes) Name() string {
	return "bytes"
}
