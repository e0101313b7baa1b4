package answer

import (
	"strings"

	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
)

// detectWarnings evaluates the edge cases over the selected chunks. ranked is
// the full candidate list, needed for the outdated check which looks below
// the selection. The flags are independent; several can fire at once.
func (cm *Composer) detectWarnings(qc *query.Context, selected, ranked []*models.Candidate) []models.Warning {
	var out []models.Warning
	if cm.hasConflict(selected) {
		out = append(out, models.WarningConflicting)
	}
	if cm.isOutdated(selected[0], ranked) {
		out = append(out, models.WarningOutdated)
	}
	if qv := qc.EffectiveVersion(); qv != "" {
		if cv := selected[0].Chunk.Version; cv != "" && cv != qv {
			out = append(out, models.WarningVersionMismatch)
		}
	}
	return sortWarnings(out)
}

// hasConflict looks for a pair of selected chunks on the same topic whose
// authority differs (doc vs ticket, resolved vs pending, or two docs at
// different versions) and whose content materially diverges.
func (cm *Composer) hasConflict(selected []*models.Candidate) bool {
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			a, b := selected[i].Chunk, selected[j].Chunk
			if !sameTopic(a, b) {
				continue
			}
			if !authorityDiffers(a, b) {
				continue
			}
			if textOverlap(a.Text, b.Text) < 0.5 {
				return true
			}
		}
	}
	return false
}

func authorityDiffers(a, b *models.Chunk) bool {
	if a.Source != b.Source {
		return true
	}
	if a.Source == models.SourceTicket && a.Status != b.Status {
		return true
	}
	if a.Source == models.SourceDoc && a.Version != "" && b.Version != "" && a.Version != b.Version {
		return true
	}
	return false
}

// isOutdated fires when the top chunk is older than the freshness threshold
// and a newer chunk on the same topic sits lower in the ranking. Old content
// alone is not outdated; being outranked by nothing newer means it is still
// the best available.
func (cm *Composer) isOutdated(top *models.Candidate, ranked []*models.Candidate) bool {
	if top.Chunk.LastUpdated.IsZero() {
		return false
	}
	cutoff := cm.now().AddDate(0, 0, -cm.cfg.FreshnessDays)
	if top.Chunk.LastUpdated.After(cutoff) {
		return false
	}
	for _, cand := range ranked {
		if cand.Chunk.ID == top.Chunk.ID {
			continue
		}
		if sameTopic(top.Chunk, cand.Chunk) && cand.Chunk.LastUpdated.After(top.Chunk.LastUpdated) {
			return true
		}
	}
	return false
}

// sameTopic is the shared-topic heuristic: same document, at least two shared
// tags, or half the title tokens in common.
func sameTopic(a, b *models.Chunk) bool {
	if a.DocID == b.DocID {
		return true
	}
	if sharedTags(a.Tags, b.Tags) >= 2 {
		return true
	}
	return titleOverlap(a.Title, b.Title) >= 0.5
}

func sharedTags(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[strings.ToLower(t)] = true
	}
	n := 0
	for _, t := range b {
		if set[strings.ToLower(t)] {
			n++
		}
	}
	return n
}

// titleOverlap is the fraction of the smaller title's tokens present in the
// other title.
func titleOverlap(a, b string) float64 {
	ta, tb := lexical.Tokenize(a), lexical.Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	set := make(map[string]bool, len(tb))
	for _, t := range tb {
		set[t] = true
	}
	n := 0
	for _, t := range ta {
		if set[t] {
			n++
		}
	}
	return float64(n) / float64(len(ta))
}

// textOverlap is the Jaccard similarity of the two texts' token sets.
func textOverlap(a, b string) float64 {
	sa := make(map[string]bool)
	for _, t := range lexical.Tokenize(a) {
		sa[t] = true
	}
	sb := make(map[string]bool)
	for _, t := range lexical.Tokenize(b) {
		sb[t] = true
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if sb[t] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}
