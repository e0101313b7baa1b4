package corpus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// Snapshot is one immutable, fully-built view of the corpus. Queries run
// against a snapshot; rebuilds produce a new one and swap it in whole, so a
// half-built index is never visible.
type Snapshot struct {
	ID      uuid.UUID
	BuiltAt time.Time
	Chunks  []*models.Chunk
	Lexical *lexical.Index
	// Vector is nil when embedding failed or is disabled; semantic search
	// then degrades to zero candidates.
	Vector vector.Index

	byID map[string]*models.Chunk
}

// Chunk returns the chunk with the given id, or nil.
func (s *Snapshot) Chunk(id string) *models.Chunk {
	return s.byID[id]
}

// ChunkMap exposes the id lookup map. Callers must not mutate it.
func (s *Snapshot) ChunkMap() map[string]*models.Chunk {
	return s.byID
}

// Size returns the chunk count.
func (s *Snapshot) Size() int {
	return len(s.Chunks)
}

// Holder publishes the current snapshot to concurrent readers. Readers keep
// using the snapshot they loaded even while a newer one is swapped in.
type Holder struct {
	ptr atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil before the first build.
func (h *Holder) Load() *Snapshot {
	return h.ptr.Load()
}

// Store atomically publishes a snapshot.
func (h *Holder) Store(s *Snapshot) {
	h.ptr.Store(s)
}

// Builder turns documents into snapshots.
type Builder struct {
	embedder      embedding.Embedder
	dimensions    int
	workers       int
	maxChunkChars int
	logger        *zap.Logger

	mu   sync.Mutex
	warm vector.Index
}

// NewBuilder creates a Builder. embedder may be nil to skip vector indexing.
func NewBuilder(embedder embedding.Embedder, workers, maxChunkChars int, logger *zap.Logger) *Builder {
	if workers <= 0 {
		workers = 8
	}
	dims := 0
	if embedder != nil {
		dims = embedder.Dimensions()
	}
	return &Builder{
		embedder:      embedder,
		dimensions:    dims,
		workers:       workers,
		maxChunkChars: maxChunkChars,
		logger:        logger,
	}
}

// WarmStart seeds the next build with vectors from a previously saved index.
// Only the first build after seeding reuses them; later rebuilds re-embed, so
// a chunk whose text changed under the same id cannot keep a stale vector
// beyond startup.
func (b *Builder) WarmStart(idx vector.Index) {
	b.mu.Lock()
	b.warm = idx
	b.mu.Unlock()
}

// takeWarm returns and clears the warm index.
func (b *Builder) takeWarm() vector.Index {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.warm
	b.warm = nil
	return idx
}

// Build chunks the documents and constructs both indexes. The lexical index
// always builds; a vector indexing failure downgrades the snapshot to
// lexical-only rather than failing the build.
func (b *Builder) Build(ctx context.Context, docs []*models.Document) (*Snapshot, error) {
	chunks := ChunkAll(docs, b.maxChunkChars)
	snap := &Snapshot{
		ID:      uuid.New(),
		BuiltAt: time.Now(),
		Chunks:  chunks,
		Lexical: lexical.Build(chunks),
		byID:    make(map[string]*models.Chunk, len(chunks)),
	}
	for _, c := range chunks {
		snap.byID[c.ID] = c
	}

	if b.embedder != nil && len(chunks) > 0 {
		idx, err := b.buildVectorIndex(ctx, chunks)
		if err != nil {
			b.logger.Warn("vector index build failed, snapshot is lexical-only",
				zap.Error(err), zap.Int("chunks", len(chunks)))
		} else {
			snap.Vector = idx
		}
	}

	b.logger.Info("corpus snapshot built",
		zap.String("snapshot_id", snap.ID.String()),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.Bool("vector_index", snap.Vector != nil))
	return snap, nil
}

// buildVectorIndex embeds all chunks through a bounded worker pool and adds
// the vectors in chunk order so the index is deterministic. Chunks found in a
// warm-start index skip the embed step.
func (b *Builder) buildVectorIndex(ctx context.Context, chunks []*models.Chunk) (vector.Index, error) {
	vecs := make([][]float32, len(chunks))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	warm := b.takeWarm()
	reused := 0

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	for i, chunk := range chunks {
		if warm != nil {
			if vec, ok := warm.Get(chunk.ID); ok && len(vec) == b.dimensions {
				vecs[i] = vec
				reused++
				continue
			}
		}
		i, chunk := i, chunk
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			vec, err := b.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			vecs[i] = vec
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if reused > 0 {
		b.logger.Info("reused saved vectors",
			zap.Int("reused", reused), zap.Int("embedded", len(chunks)-reused))
	}

	idx := vector.NewMemoryIndex(b.dimensions)
	for i, chunk := range chunks {
		if err := idx.Add(chunk.ID, vecs[i]); err != nil {
			return nil, err
		}
	}
	return idx, nil
}
