package tokenizer

import (
	"fmt"
	"sort"

	"github.com/pkoukk/tiktoken-go"
)

// encodingInfo describes the ordinary (non-special) token range of an encoding.
type encodingInfo struct {
	vocab int32 // IDs produced for plain text are in [0, vocab)
	eos   int32 // <|endoftext|>
}

var encodings = map[string]encodingInfo{
	"cl100k_base": {vocab: 100256, eos: 100257},
	"p50k_base":   {vocab: 50281, eos: 50256},
	"r50k_base":   {vocab: 50257, eos: 50256},
}

// Encodings lists the supported tiktoken encoding names.
func Encodings() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI BPE encodings.
//
// Special tokens in the input are encoded as ordinary text, so every ID is
// below VocabSize.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	info     encodingInfo
}

// NewTikToken creates a TikToken tokenizer with the named encoding.
//
// The BPE ranks are fetched on first use and cached by tiktoken-go
// (TIKTOKEN_CACHE_DIR).
func NewTikToken(encodingName string) (*TikToken, error) {
	info, ok := encodings[encodingName]
	if !ok {
		return nil, fmt.Errorf("unsupported tiktoken encoding %q (supported: %v)", encodingName, Encodings())
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
		info:     info,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		id := int32(tok) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
		if id < 0 || id >= t.info.vocab {
			return nil, fmt.Errorf("tiktoken %s: token %d outside [0, %d)", t.name, id, t.info.vocab)
		}
		result[i] = id
	}
	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	ints := make([]int, len(tokens))
	for i, tok := range tokens {
		ints[i] = int(tok)
	}
	return t.encoding.Decode(ints), nil
}

// VocabSize returns the upper bound of IDs produced for plain text.
func (t *TikToken) VocabSize() int {
	return int(t.info.vocab)
}

// EosToken returns the <|endoftext|> ID.
func (t *TikToken) EosToken() int32 {
	return t.info.eos
}

// PadToken returns -1; tiktoken defines no padding token.
func (t *TikToken) PadToken() int32 {
	return -1
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
