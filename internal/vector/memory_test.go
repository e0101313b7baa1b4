package vector

import (
	"path/filepath"
	"testing"
)

func TestMemoryIndex_AddAndSearch(t *testing.T) {
	idx := NewMemoryIndex(3)
	vecs := map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
		"c": {0.7, 0.7, 0},
	}
	for id, v := range vecs {
		if err := idx.Add(id, v); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	if idx.Size() != 3 {
		t.Fatalf("Size = %d, want 3", idx.Size())
	}

	results, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("nearest = %s, want a", results[0].ID)
	}
	if results[1].ID != "c" {
		t.Errorf("second = %s, want c", results[1].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Error("results must be ordered by descending score")
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex(4)
	if err := idx.Add("a", []float32{1, 0}); err == nil {
		t.Error("Add with wrong dimension must fail")
	}
	if _, err := idx.Search([]float32{1, 0}, 1); err == nil {
		t.Error("Search with wrong dimension must fail")
	}
}

func TestMemoryIndex_ReplaceExisting(t *testing.T) {
	idx := NewMemoryIndex(2)
	if err := idx.Add("a", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add("a", []float32{0, 1}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Fatalf("Size = %d after replace, want 1", idx.Size())
	}
	results, err := idx.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Score < 0.99 {
		t.Errorf("replaced vector not in effect, score = %f", results[0].Score)
	}
}

func TestMemoryIndex_Get(t *testing.T) {
	idx := NewMemoryIndex(2)
	if err := idx.Add("a", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	vec, ok := idx.Get("a")
	if !ok || len(vec) != 2 || vec[0] != 1 {
		t.Errorf("Get(a) = %v, %v", vec, ok)
	}
	if _, ok := idx.Get("missing"); ok {
		t.Error("Get must report absent ids")
	}
}

func TestMemoryIndex_EmptyAndZeroK(t *testing.T) {
	idx := NewMemoryIndex(2)
	if got, err := idx.Search([]float32{1, 0}, 5); err != nil || got != nil {
		t.Errorf("empty index: got %v, %v; want nil, nil", got, err)
	}
	if err := idx.Add("a", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if got, _ := idx.Search([]float32{1, 0}, 0); got != nil {
		t.Errorf("k=0 must return nil, got %v", got)
	}
}

func TestMemoryIndex_SaveLoadRoundTrip(t *testing.T) {
	idx := NewMemoryIndex(3)
	ids := []string{"doc-001#000", "doc-001#001", "tick-042#000"}
	for i, id := range ids {
		vec := []float32{float32(i), float32(i) * 0.5, 1}
		if err := idx.Add(id, vec); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "indices", "vectors.bin")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewMemoryIndex(0)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != idx.Size() {
		t.Fatalf("loaded Size = %d, want %d", loaded.Size(), idx.Size())
	}

	query := []float32{2, 1, 1}
	want, err := idx.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	got, err := loaded.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("result %d: id %s, want %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestMemoryIndex_LoadRejectsBadFile(t *testing.T) {
	idx := NewMemoryIndex(3)
	if err := idx.Load(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("loading a missing file must fail")
	}
}
