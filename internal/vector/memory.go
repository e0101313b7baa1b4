package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const fileMagic uint32 = 0x4b4f5458 // "KOTX"

// MemoryIndex is a brute-force in-memory vector index. Exact search by full
// scan, which is plenty for corpora in the tens of thousands of chunks.
type MemoryIndex struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    [][]float32
	byID       map[string]int
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) *MemoryIndex {
	return &MemoryIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}
}

// Add inserts or replaces the vector for id.
func (m *MemoryIndex) Add(id string, vec []float32) error {
	if len(vec) != m.dimensions {
		return fmt.Errorf("vector index: dimension mismatch: got %d, want %d", len(vec), m.dimensions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos, ok := m.byID[id]; ok {
		m.vectors[pos] = vec
		return nil
	}
	m.byID[id] = len(m.ids)
	m.ids = append(m.ids, id)
	m.vectors = append(m.vectors, vec)
	return nil
}

// Get returns the stored vector for id. Callers must not mutate it.
func (m *MemoryIndex) Get(id string) ([]float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	return m.vectors[pos], true
}

// Search returns the k nearest vectors by inner product, highest first.
// Ties resolve by insertion order.
func (m *MemoryIndex) Search(vec []float32, k int) ([]Result, error) {
	if len(vec) != m.dimensions {
		return nil, fmt.Errorf("vector index: dimension mismatch: got %d, want %d", len(vec), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ids) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		ord   int
		score float64
	}
	hits := make([]scored, len(m.ids))
	for i, stored := range m.vectors {
		var sum float64
		for j := range vec {
			sum += float64(vec[j]) * float64(stored[j])
		}
		hits[i] = scored{ord: i, score: sum}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].ord < hits[b].ord
	})
	if k > len(hits) {
		k = len(hits)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{ID: m.ids[hits[i].ord], Score: hits[i].score}
	}
	return out, nil
}

// Size returns the number of stored vectors.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Save writes the index to path in a compact binary format. The parent
// directory is created if missing.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := []uint32{fileMagic, uint32(m.dimensions), uint32(len(m.ids))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write index header: %w", err)
		}
	}
	for i, id := range m.ids {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("write index entry: %w", err)
		}
		if _, err := w.WriteString(id); err != nil {
			return fmt.Errorf("write index entry: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, m.vectors[i]); err != nil {
			return fmt.Errorf("write index entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return nil
}

// Load replaces the index contents with the file at path.
func (m *MemoryIndex) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic, dims, count uint32
	for _, dst := range []*uint32{&magic, &dims, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return fmt.Errorf("read index header: %w", err)
		}
	}
	if magic != fileMagic {
		return fmt.Errorf("index file %s: bad magic", path)
	}

	ids := make([]string, 0, count)
	vectors := make([][]float32, 0, count)
	byID := make(map[string]int, count)
	for i := uint32(0); i < count; i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read index entry: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return fmt.Errorf("read index entry: %w", err)
		}
		vec := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read index entry: %w", err)
		}
		id := string(idBytes)
		byID[id] = len(ids)
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = int(dims)
	m.ids = ids
	m.vectors = vectors
	m.byID = byID
	return nil
}

// Close releases nothing; it exists to satisfy Index.
func (m *MemoryIndex) Close() error {
	return nil
}
