package corpus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/storage"
)

// Manager owns the snapshot lifecycle: load the dataset, build, publish, and
// persist. Rebuilds are serialized; queries read through the Holder and are
// never blocked by a rebuild in progress.
type Manager struct {
	dir     string
	builder *Builder
	holder  *Holder
	store   *storage.ChunkStore
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu sync.Mutex
}

// NewManager creates a Manager. store and metrics may be nil.
func NewManager(dir string, builder *Builder, holder *Holder, store *storage.ChunkStore, m *metrics.Metrics, logger *zap.Logger) *Manager {
	return &Manager{
		dir:     dir,
		builder: builder,
		holder:  holder,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Holder returns the snapshot holder queries read from.
func (m *Manager) Holder() *Holder {
	return m.holder
}

// Rebuild loads the dataset, builds a fresh snapshot, swaps it in, and
// persists the chunk set. The previous snapshot stays visible until the new
// one is complete.
func (m *Manager) Rebuild(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := LoadAll(m.dir)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	snap, err := m.builder.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	m.holder.Store(snap)

	if m.metrics != nil {
		m.metrics.RebuildsTotal.Inc()
		m.metrics.CorpusChunks.Set(float64(snap.Size()))
	}
	if m.store != nil {
		if err := m.store.ReplaceAll(ctx, snap.Chunks); err != nil {
			// The in-memory snapshot is already live; persistence failure
			// only affects chunk inspection, so log and carry on.
			m.logger.Warn("failed to persist chunks", zap.Error(err))
		}
	}
	return snap, nil
}
