// Package serialization reads and writes SafeTensors checkpoints.
//
// Layout:
//
//	[8 bytes: header size N (uint64 LE)]
//	[N bytes: JSON header, space padded to a multiple of 8]
//	[tensor data: raw little-endian bytes, concatenated]
//
// The header maps each tensor name to {"dtype", "shape", "data_offsets"},
// with offsets relative to the start of the data section. The optional
// "__metadata__" entry carries string pairs; the writer stores a SHA-256 of
// the data section there and the reader verifies it when present.
//
// Example:
//
//	err := serialization.SaveFile("weights.safetensors", tensors, map[string]string{"format": "perceiver"})
//
//	f, err := serialization.LoadFile("weights.safetensors")
//	latents := f.Tensors["latents"]
package serialization
