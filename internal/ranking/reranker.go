// Package ranking fuses lexical and semantic retrieval scores and re-ranks
// candidates with a chain of named boosts.
package ranking

import (
	"sort"

	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/semantic"
)

// Reranker turns per-source candidate lists into a single ranked list.
type Reranker struct {
	cfg    Config
	boosts []Boost
}

// NewReranker builds a Reranker with the given config and boost chain.
func NewReranker(cfg Config, boosts []Boost) *Reranker {
	return &Reranker{cfg: cfg, boosts: boosts}
}

// Rerank unions both candidate sets, min-max normalizes each source, fuses
// with the configured weights, applies the boost chain, and returns the top k
// candidates in deterministic order.
//
// lookup resolves chunk ids to chunks; ids without a chunk are dropped.
func (r *Reranker) Rerank(
	qc *query.Context,
	lex []lexical.Result,
	sem []semantic.Result,
	lookup map[string]*models.Chunk,
	k int,
) []*models.Candidate {
	if k <= 0 {
		return nil
	}

	lexScores := make(map[string]float64, len(lex))
	for _, res := range lex {
		lexScores[res.ChunkID] = res.Score
	}
	semScores := make(map[string]float64, len(sem))
	for _, res := range sem {
		semScores[res.ChunkID] = res.Similarity
	}

	rawLex := make(map[string]float64, len(lexScores))
	for id, s := range lexScores {
		rawLex[id] = s
	}
	rawSem := make(map[string]float64, len(semScores))
	for id, s := range semScores {
		rawSem[id] = s
	}

	normalizeScores(lexScores)
	normalizeScores(semScores)
	fused := fuse(r.cfg, semScores, lexScores)

	candidates := make([]*models.Candidate, 0, len(fused))
	for id, score := range fused {
		chunk, ok := lookup[id]
		if !ok {
			continue
		}
		cand := &models.Candidate{
			Chunk:         chunk,
			SemanticScore: rawSem[id],
			LexicalScore:  rawLex[id],
			SemanticNorm:  semScores[id],
			LexicalNorm:   lexScores[id],
			FusedScore:    score,
		}
		ApplyBoosts(r.boosts, qc, cand)
		candidates = append(candidates, cand)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if pa, pb := a.Chunk.PriorityRank(), b.Chunk.PriorityRank(); pa != pb {
			return pa < pb
		}
		if !a.Chunk.LastUpdated.Equal(b.Chunk.LastUpdated) {
			return a.Chunk.LastUpdated.After(b.Chunk.LastUpdated)
		}
		return a.Chunk.ID < b.Chunk.ID
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}
