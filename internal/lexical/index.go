// Package lexical provides an inverted-index BM25 scorer over chunk text.
package lexical

import (
	"math"
	"sort"

	"github.com/hyperjump/kotae/internal/models"
)

// BM25 constants. Fixed by contract, not tunables.
const (
	k1 = 1.2
	b  = 0.75
)

// Result is a single lexical search hit.
type Result struct {
	ChunkID string
	Score   float64
}

type posting struct {
	ord int // insertion order of the chunk
	tf  int
}

// Index holds term statistics for one immutable corpus snapshot.
// Build constructs a complete index before it is ever visible to Search,
// so a rebuild is an atomic swap at the snapshot level.
type Index struct {
	ids      []string
	lens     []int
	avgLen   float64
	postings map[string][]posting
	df       map[string]int
}

// Build indexes the given chunks in order. Insertion order is preserved and
// used for deterministic tie-breaking.
func Build(chunks []*models.Chunk) *Index {
	idx := &Index{
		ids:      make([]string, 0, len(chunks)),
		lens:     make([]int, 0, len(chunks)),
		postings: make(map[string][]posting),
		df:       make(map[string]int),
	}
	var totalLen int
	for ord, ch := range chunks {
		tokens := Tokenize(ch.Text)
		idx.ids = append(idx.ids, ch.ID)
		idx.lens = append(idx.lens, len(tokens))
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, n := range tf {
			idx.postings[term] = append(idx.postings[term], posting{ord: ord, tf: n})
			idx.df[term]++
		}
	}
	if len(chunks) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(chunks))
	}
	return idx
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	return len(idx.ids)
}

// DocFrequency returns the number of chunks containing term.
func (idx *Index) DocFrequency(term string) int {
	return idx.df[term]
}

// idf is the standard BM25 inverse document frequency, always positive.
func (idx *Index) idf(term string) float64 {
	n := float64(len(idx.ids))
	df := float64(idx.df[term])
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Search scores chunks against the query terms and returns up to k hits in
// descending score order. Only terms present in a chunk contribute (no
// smoothing); chunks sharing no terms with the query are not returned.
// Ties are broken by chunk insertion order.
func (idx *Index) Search(terms []string, k int) []Result {
	if len(idx.ids) == 0 || len(terms) == 0 || k <= 0 {
		return nil
	}

	// Deduplicate query terms: repeating a term in the query does not
	// multiply its contribution.
	seen := make(map[string]struct{}, len(terms))
	scores := make(map[int]float64)
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		plist, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := idx.idf(term)
		for _, p := range plist {
			tf := float64(p.tf)
			norm := 1 - b + b*float64(idx.lens[p.ord])/idx.avgLen
			scores[p.ord] += idf * (tf * (k1 + 1)) / (tf + k1*norm)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	ords := make([]int, 0, len(scores))
	for ord := range scores {
		ords = append(ords, ord)
	}
	sort.Slice(ords, func(i, j int) bool {
		si, sj := scores[ords[i]], scores[ords[j]]
		if si != sj {
			return si > sj
		}
		return ords[i] < ords[j]
	})
	if k > len(ords) {
		k = len(ords)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		results[i] = Result{ChunkID: idx.ids[ords[i]], Score: scores[ords[i]]}
	}
	return results
}
