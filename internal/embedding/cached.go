package embedding

import (
	"container/list"
	"context"
	"sync"
)

// CachedEmbedder decorates an Embedder with an LRU cache keyed by text.
// Rebuilding an index over a mostly-unchanged corpus then hits the cache for
// every unchanged chunk.
type CachedEmbedder struct {
	inner    Embedder
	capacity int

	mu    sync.Mutex
	index map[string]*list.Element
	lru   *list.List
}

type cacheEntry struct {
	key string
	vec []float32
}

// NewCachedEmbedder wraps inner with an LRU cache of the given capacity.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	if capacity <= 0 {
		capacity = 4096
	}
	return &CachedEmbedder{
		inner:    inner,
		capacity: capacity,
		index:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Embed returns a cached embedding or delegates to the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(text, vec)
	return vec, nil
}

// EmbedBatch embeds only the cache misses through the inner embedder.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.get(text); ok {
			out[i] = vec
		} else {
			missTexts = append(missTexts, text)
			missIdx = append(missIdx, i)
		}
	}
	if len(missTexts) > 0 {
		vecs, err := c.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			out[missIdx[j]] = vec
			c.put(missTexts[j], vec)
		}
	}
	return out, nil
}

func (c *CachedEmbedder) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).vec, true
	}
	return nil, false
}

func (c *CachedEmbedder) put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).vec = vec
		return
	}
	c.index[key] = c.lru.PushFront(&cacheEntry{key: key, vec: vec})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).key)
	}
}

// Dimensions returns the inner embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the inner embedder.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}
