package tokenizer

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the number of distinct IDs Encode may produce.
	// Every ID returned by Encode is in [0, VocabSize).
	VocabSize() int

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int32

	// Name identifies the encoding.
	Name() string
}
