// Package vector provides similarity search over embedding vectors.
package vector

// Result is a single similarity hit.
type Result struct {
	ID    string
	Score float64
}

// Index is a store of id-keyed vectors supporting nearest-neighbor search.
// Scores are inner products; with unit-length vectors that is cosine
// similarity in [-1, 1].
type Index interface {
	Add(id string, vec []float32) error
	Get(id string) ([]float32, bool)
	Search(vec []float32, k int) ([]Result, error)
	Size() int
	Save(path string) error
	Load(path string) error
	Close() error
}
