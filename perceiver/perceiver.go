// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package perceiver

import (
	"io"

	"github.com/born-ml/perceiver/internal/perceiver"
	"github.com/born-ml/perceiver/internal/tensor"
	"github.com/born-ml/perceiver/internal/tokenizer"
)

// Errors returned by the model.
var (
	ErrInvalidConfig = perceiver.ErrInvalidConfig
	ErrShapeMismatch = perceiver.ErrShapeMismatch

	ErrCheckpointMismatch = perceiver.ErrCheckpointMismatch
)

// Config holds the construction parameters of a model.
type Config = perceiver.Config

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return perceiver.DefaultConfig()
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return perceiver.LoadConfig(path)
}

// ParseConfig decodes a YAML config on top of DefaultConfig.
func ParseConfig(r io.Reader) (Config, error) {
	return perceiver.ParseConfig(r)
}

// ReadCheckpointConfig returns the config stored in a weights file written by
// Model.SaveWeights.
func ReadCheckpointConfig(path string) (Config, error) {
	return perceiver.ReadCheckpointConfig(path)
}

// Model is a Perceiver classifier.
type Model[B tensor.Backend] = perceiver.Model[B]

// LayerGroup is one depth position of a model.
type LayerGroup[B tensor.Backend] = perceiver.LayerGroup[B]

// SelfBlock is one latent self-attention step.
type SelfBlock[B tensor.Backend] = perceiver.SelfBlock[B]

// LayerInfo describes one sublayer position (see Model.Describe).
type LayerInfo = perceiver.LayerInfo

// New builds a model.
//
// Example:
//
//	model, err := perceiver.New(perceiver.DefaultConfig(), cpu.New())
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	return perceiver.New(cfg, backend)
}

// LayerCache is the weight-tying registry.
type LayerCache[B tensor.Backend] = perceiver.LayerCache[B]

// Role names a sublayer position.
type Role = perceiver.Role

// Sublayer roles.
const (
	RoleCrossAttn  = perceiver.RoleCrossAttn
	RoleCrossFF    = perceiver.RoleCrossFF
	RoleLatentAttn = perceiver.RoleLatentAttn
	RoleLatentFF   = perceiver.RoleLatentFF
)

// TextClassifier runs a model over tokenized text.
type TextClassifier[B tensor.Backend] = perceiver.TextClassifier[B]

// Tokenizer converts text to token IDs.
type Tokenizer = tokenizer.Tokenizer

// NewTextClassifier builds a text classifier; cfg.InputAxis is forced to 1.
func NewTextClassifier[B tensor.Backend](cfg Config, tok Tokenizer, backend B) (*TextClassifier[B], error) {
	return perceiver.NewTextClassifier(cfg, tok, backend)
}

// NewTikToken returns an OpenAI BPE tokenizer ("cl100k_base", "p50k_base",
// "r50k_base").
func NewTikToken(encoding string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikToken(encoding)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewByteTokenizer returns the offline byte-level tokenizer.
func NewByteTokenizer() Tokenizer {
	return tokenizer.NewBytes()
}
