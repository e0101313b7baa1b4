package ranking

// Config holds fusion weights and boost parameters. Zero values are filled by
// ApplyDefaults so a partially specified YAML block behaves sensibly.
type Config struct {
	SemanticWeight float64 `yaml:"semantic_weight"`
	LexicalWeight  float64 `yaml:"lexical_weight"`

	DocBoost            float64 `yaml:"doc_boost"`
	ResolvedTicketBoost float64 `yaml:"resolved_ticket_boost"`
	PendingTicketBoost  float64 `yaml:"pending_ticket_boost"`

	RecencyFloor        float64 `yaml:"recency_floor"`
	RecencyHalfLifeDays float64 `yaml:"recency_half_life_days"`

	VersionMatchBoost    float64 `yaml:"version_match_boost"`
	VersionMismatchRatio float64 `yaml:"version_mismatch_ratio"`

	SynonymBoost    float64 `yaml:"synonym_boost"`
	NegationPenalty float64 `yaml:"negation_penalty"`

	IntentAffinityBoost float64 `yaml:"intent_affinity_boost"`
	IntentDocTypeBoost  float64 `yaml:"intent_doc_type_boost"`
}

// DefaultConfig returns the standard ranking parameters.
func DefaultConfig() Config {
	return Config{
		SemanticWeight:       0.5,
		LexicalWeight:        0.5,
		DocBoost:             1.10,
		ResolvedTicketBoost:  1.05,
		PendingTicketBoost:   0.90,
		RecencyFloor:         0.85,
		RecencyHalfLifeDays:  180,
		VersionMatchBoost:    1.15,
		VersionMismatchRatio: 0.3,
		SynonymBoost:         1.05,
		NegationPenalty:      0.95,
		IntentAffinityBoost:  1.08,
		IntentDocTypeBoost:   1.10,
	}
}

// ApplyDefaults fills unset fields and renormalizes the fusion weights so
// they sum to 1.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	// A single configured weight implies its complement. Retrieval sources
	// are disabled through the retrieval flags, never by zeroing a weight.
	switch {
	case c.SemanticWeight <= 0 && c.LexicalWeight <= 0:
		c.SemanticWeight = def.SemanticWeight
		c.LexicalWeight = def.LexicalWeight
	case c.SemanticWeight <= 0:
		if c.LexicalWeight < 1 {
			c.SemanticWeight = 1 - c.LexicalWeight
		} else {
			c.SemanticWeight = def.SemanticWeight
		}
	case c.LexicalWeight <= 0:
		if c.SemanticWeight < 1 {
			c.LexicalWeight = 1 - c.SemanticWeight
		} else {
			c.LexicalWeight = def.LexicalWeight
		}
	}
	if total := c.SemanticWeight + c.LexicalWeight; total > 0 {
		c.SemanticWeight /= total
		c.LexicalWeight /= total
	}
	if c.DocBoost == 0 {
		c.DocBoost = def.DocBoost
	}
	if c.ResolvedTicketBoost == 0 {
		c.ResolvedTicketBoost = def.ResolvedTicketBoost
	}
	if c.PendingTicketBoost == 0 {
		c.PendingTicketBoost = def.PendingTicketBoost
	}
	if c.RecencyFloor == 0 {
		c.RecencyFloor = def.RecencyFloor
	}
	if c.RecencyHalfLifeDays == 0 {
		c.RecencyHalfLifeDays = def.RecencyHalfLifeDays
	}
	if c.VersionMatchBoost == 0 {
		c.VersionMatchBoost = def.VersionMatchBoost
	}
	if c.VersionMismatchRatio == 0 {
		c.VersionMismatchRatio = def.VersionMismatchRatio
	}
	if c.SynonymBoost == 0 {
		c.SynonymBoost = def.SynonymBoost
	}
	if c.NegationPenalty == 0 {
		c.NegationPenalty = def.NegationPenalty
	}
	if c.IntentAffinityBoost == 0 {
		c.IntentAffinityBoost = def.IntentAffinityBoost
	}
	if c.IntentDocTypeBoost == 0 {
		c.IntentDocTypeBoost = def.IntentDocTypeBoost
	}
}

// VersionMismatchPenalty derives the mismatch multiplier from the match boost:
// the penalty magnitude is VersionMismatchRatio times the boost magnitude.
// With the defaults that is 1 - 0.3*0.15 = 0.955.
func (c *Config) VersionMismatchPenalty() float64 {
	return 1 - c.VersionMismatchRatio*(c.VersionMatchBoost-1)
}
