package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/pkg/utils"
)

// HashEmbedder is a deterministic local embedder: a hashed bag-of-words
// projection. Texts sharing terms get similar vectors, which is enough for
// tests and for offline operation without an embedding service.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hash embedder with the given dimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed hashes each token into a fixed-size bucket vector and L2-normalizes.
// The same text always yields the same embedding.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	for _, tok := range lexical.Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimensions]++
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
