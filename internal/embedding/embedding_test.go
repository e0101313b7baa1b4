package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "sync error on shared folder")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(ctx, "sync error on shared folder")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text must produce identical vectors")
		}
	}
	if math.Abs(dot(a, a)-1.0) > 1e-5 {
		t.Errorf("vector must be unit length, got norm^2 = %f", dot(a, a))
	}
}

func TestHashEmbedder_OverlapSimilarity(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "how do I fix sync errors")
	near, _ := e.Embed(ctx, "fixing sync errors on desktop")
	far, _ := e.Embed(ctx, "billing history and invoices")

	if dot(query, near) <= dot(query, far) {
		t.Errorf("overlapping text must be closer: near=%f far=%f", dot(query, near), dot(query, far))
	}
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 32 {
		t.Errorf("dimensions = %d, want 32", len(vec))
	}
	for _, v := range vec {
		if v != 0 {
			t.Error("empty text must embed to the zero vector")
			break
		}
	}
}

// countingEmbedder records how many texts reach the backend.
type countingEmbedder struct {
	*HashEmbedder
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.HashEmbedder.Embed(ctx, text)
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls += len(texts)
	return e.HashEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder_HitsSkipBackend(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(32)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "alpha"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := cached.Embed(ctx, "alpha"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("backend calls = %d, want 1", inner.calls)
	}

	vecs, err := cached.EmbedBatch(ctx, []string{"alpha", "beta", "alpha"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	// Only "beta" was a miss.
	if inner.calls != 2 {
		t.Errorf("backend calls = %d, want 2", inner.calls)
	}
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(16)}
	cached := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		if _, err := cached.Embed(ctx, text); err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
	}
	// "a" is the oldest entry and must have been evicted.
	inner.calls = 0
	if _, err := cached.Embed(ctx, "a"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("evicted entry must go back to the backend, calls = %d", inner.calls)
	}
	if _, err := cached.Embed(ctx, "c"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("recent entry must still be cached, calls = %d", inner.calls)
	}
}

// failingEmbedder always errors.
type failingEmbedder struct{ HashEmbedder }

func (e *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("backend down")
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	cached := NewCachedEmbedder(&failingEmbedder{}, 10)
	if _, err := cached.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error from failing backend")
	}
}
