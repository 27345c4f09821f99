// Package tokenizer turns text into token ID sequences for the Perceiver text
// front-end.
//
// Implementations:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//     through pkoukk/tiktoken-go
//   - Bytes: one token per UTF-8 byte, works offline
//
// EncodeBatch pads a batch of texts to a common length and returns the
// attention mask marking real tokens:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	batch, err := tokenizer.EncodeBatch(tok, []string{"a cat", "a small dog"}, parallel.DefaultConfig())
//	// batch.IDs  [2 * batch.SeqLen]
//	// batch.Mask [2 * batch.SeqLen], false on padding
package tokenizer
