package nn

import (
	"fmt"

	"github.com/born-ml/perceiver/internal/tensor"
)

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter, initialized from N(0, 1)
//   - Forward: indices [...] -> embeddings [..., EmbedDim]
//
// Example:
//
//	embed := nn.NewEmbedding(50257, 16, backend)
//	ids := tensor.MustFromSlice([]int32{1, 2, 3}, tensor.Shape{1, 3}, backend)
//	x := embed.Forward(ids) // [1, 3, 16]
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B]
	NumEmbed int
	EmbedDim int
}

// NewEmbedding creates a new Embedding layer.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("NewEmbedding: sizes must be positive, got %d x %d", numEmbeddings, embeddingDim))
	}
	weight := tensor.Randn(tensor.Shape{numEmbeddings, embeddingDim}, backend)
	return &Embedding[B]{
		Weight:   NewParameter("weight", weight),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
	}
}

// Forward looks up the embedding vector of every index.
//
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices)
}

// Parameters returns the embedding table.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
