// Package embedding provides text embedding backends and caching.
//
// The retrieval core never computes vectors itself; it consumes an Embedder.
// Two backends ship: an OpenAI API client and a deterministic local hash
// embedder for tests and offline use.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must return
// unit-length vectors so inner product equals cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
