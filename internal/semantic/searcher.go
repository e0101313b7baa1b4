// Package semantic adapts an embedding backend and a vector index into a
// query-time similarity search with normalized scores.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/vector"
)

// ErrSearchUnavailable reports that semantic search cannot serve the request.
// Callers degrade to lexical-only retrieval rather than failing the query.
var ErrSearchUnavailable = errors.New("semantic search unavailable")

// Result is a semantic candidate with similarity normalized to [0, 1].
type Result struct {
	ChunkID    string
	Similarity float64
}

// Searcher embeds query text and searches a vector index. The index is passed
// per call so searches always run against the caller's snapshot.
type Searcher struct {
	embedder  embedding.Embedder
	overfetch int
	timeout   time.Duration
}

// NewSearcher creates a Searcher. overfetch multiplies the requested k before
// hitting the index so downstream re-ranking has headroom; values below 2 are
// raised to 2.
func NewSearcher(embedder embedding.Embedder, overfetch int, timeout time.Duration) *Searcher {
	if overfetch < 2 {
		overfetch = 2
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Searcher{embedder: embedder, overfetch: overfetch, timeout: timeout}
}

// Search returns up to k*overfetch candidates for text, most similar first.
// A nil or empty index, an embedding failure, or an index failure all return
// an error wrapping ErrSearchUnavailable.
func (s *Searcher) Search(ctx context.Context, idx vector.Index, text string, k int) ([]Result, error) {
	if idx == nil || idx.Size() == 0 {
		return nil, fmt.Errorf("%w: no vector index", ErrSearchUnavailable)
	}
	if k <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrSearchUnavailable, err)
	}
	hits, err := idx.Search(vec, k*s.overfetch)
	if err != nil {
		return nil, fmt.Errorf("%w: index search: %v", ErrSearchUnavailable, err)
	}

	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{ChunkID: h.ID, Similarity: normalize(h.Score)}
	}
	return out, nil
}

// normalize maps cosine similarity from [-1, 1] onto [0, 1] and clamps
// float rounding outside the interval.
func normalize(cos float64) float64 {
	v := (cos + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
