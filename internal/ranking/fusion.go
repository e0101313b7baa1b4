package ranking

// normalizeScores min-max normalizes scores in place over the given map.
// A degenerate set where max equals min maps every entry to 1 when the shared
// value is positive and to 0 otherwise.
func normalizeScores(scores map[string]float64) {
	if len(scores) == 0 {
		return
	}
	min, max := 0.0, 0.0
	first := true
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		v := 0.0
		if max > 0 {
			v = 1.0
		}
		for id := range scores {
			scores[id] = v
		}
		return
	}
	for id, s := range scores {
		scores[id] = (s - min) / (max - min)
	}
}

// fuse combines normalized semantic and lexical scores with the configured
// weights. Ids absent from a source contribute zero for that source.
func fuse(cfg Config, semantic, lexical map[string]float64) map[string]float64 {
	fused := make(map[string]float64, len(semantic)+len(lexical))
	for id, s := range semantic {
		fused[id] += cfg.SemanticWeight * s
	}
	for id, s := range lexical {
		fused[id] += cfg.LexicalWeight * s
	}
	return fused
}
