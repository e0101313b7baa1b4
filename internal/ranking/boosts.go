package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
)

// Boost is one named multiplicative adjustment in the re-ranking chain.
// Factor must be pure: same inputs, same multiplier.
type Boost interface {
	Name() string
	Factor(qc *query.Context, c *models.Chunk) float64
}

// DefaultBoosts returns the standard chain in application order. now is
// injectable so recency behavior can be pinned in tests; nil means time.Now.
func DefaultBoosts(cfg Config, now func() time.Time) []Boost {
	if now == nil {
		now = time.Now
	}
	return []Boost{
		&sourcePriorityBoost{cfg: cfg},
		&recencyBoost{cfg: cfg, now: now},
		&versionBoost{cfg: cfg},
		&synonymBoost{cfg: cfg},
		&negationBoost{cfg: cfg},
		&intentBoost{cfg: cfg},
	}
}

// ApplyBoosts runs the chain over a candidate, multiplying FusedScore and
// appending a log entry for every boost whose factor is not exactly 1.
func ApplyBoosts(boosts []Boost, qc *query.Context, cand *models.Candidate) {
	for _, b := range boosts {
		factor := b.Factor(qc, cand.Chunk)
		if factor == 1 {
			continue
		}
		before := cand.FusedScore
		cand.FusedScore = before * factor
		cand.BoostLog = append(cand.BoostLog, models.BoostEntry{
			Name:   b.Name(),
			Before: before,
			After:  cand.FusedScore,
		})
	}
}

// sourcePriorityBoost favors official docs over resolved tickets and resolved
// tickets over pending ones.
type sourcePriorityBoost struct{ cfg Config }

func (b *sourcePriorityBoost) Name() string { return "source_priority" }

func (b *sourcePriorityBoost) Factor(_ *query.Context, c *models.Chunk) float64 {
	switch {
	case c.Source == models.SourceDoc:
		return b.cfg.DocBoost
	case c.Status == models.StatusResolved:
		return b.cfg.ResolvedTicketBoost
	default:
		return b.cfg.PendingTicketBoost
	}
}

// recencyBoost decays exponentially with content age but never drops below
// the configured floor, so old content is dampened rather than buried.
type recencyBoost struct {
	cfg Config
	now func() time.Time
}

func (b *recencyBoost) Name() string { return "recency" }

func (b *recencyBoost) Factor(_ *query.Context, c *models.Chunk) float64 {
	if c.LastUpdated.IsZero() {
		return b.cfg.RecencyFloor
	}
	ageDays := b.now().Sub(c.LastUpdated).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	floor := b.cfg.RecencyFloor
	return floor + (1-floor)*math.Exp2(-ageDays/b.cfg.RecencyHalfLifeDays)
}

// versionBoost rewards exact version matches and applies a smaller penalty on
// mismatch. Missing versions on either side leave the score alone.
type versionBoost struct{ cfg Config }

func (b *versionBoost) Name() string { return "version" }

func (b *versionBoost) Factor(qc *query.Context, c *models.Chunk) float64 {
	qv := qc.EffectiveVersion()
	if qv == "" || c.Version == "" {
		return 1
	}
	if qv == c.Version {
		return b.cfg.VersionMatchBoost
	}
	return b.cfg.VersionMismatchPenalty()
}

// synonymBoost rewards chunks that answer the query through an alternate
// spelling from a shared synonym group.
type synonymBoost struct{ cfg Config }

func (b *synonymBoost) Name() string { return "synonym" }

func (b *synonymBoost) Factor(qc *query.Context, c *models.Chunk) float64 {
	if query.SharesSynonymGroup(qc.Terms, c.Text) {
		return b.cfg.SynonymBoost
	}
	return 1
}

// negationBoost penalizes candidates whose negation sense disagrees with the
// query: a negated query matching an affirmative chunk, or the reverse.
type negationBoost struct{ cfg Config }

func (b *negationBoost) Name() string { return "negation" }

func (b *negationBoost) Factor(qc *query.Context, c *models.Chunk) float64 {
	if qc.Negated != query.ContainsNegation(c.Text) {
		return b.cfg.NegationPenalty
	}
	return 1
}

// docAffinityIntents are informational intents best served by official docs;
// ticketAffinityIntents are incident intents where field reports carry the
// practical fix.
var docAffinityIntents = map[string]bool{
	query.IntentDeveloper:    true,
	query.IntentSecurity:     true,
	query.IntentFeatureUsage: true,
	query.IntentProductSetup: true,
	query.IntentComparison:   true,
	query.IntentCancellation: true,
}

var ticketAffinityIntents = map[string]bool{
	query.IntentTroubleshooting: true,
	query.IntentPerformance:     true,
	query.IntentKnownIssue:      true,
	query.IntentSharing:         true,
	query.IntentTechnicalIssue:  true,
}

// intentDocTypes lists doc_type fragments that serve an intent directly.
var intentDocTypes = map[string][]string{
	query.IntentDeveloper:    {"developer"},
	query.IntentSecurity:     {"security"},
	query.IntentFeatureUsage: {"advanced", "user_guide", "mobile"},
}

// intentBoost rewards candidates from the source class and doc type that
// usually answer the classified intent. Unclassified queries are neutral.
type intentBoost struct{ cfg Config }

func (b *intentBoost) Name() string { return "intent" }

func (b *intentBoost) Factor(qc *query.Context, c *models.Chunk) float64 {
	intent := qc.Intent
	if intent == "" || intent == query.IntentOther {
		return 1
	}
	factor := 1.0
	if c.Source == models.SourceDoc {
		if docAffinityIntents[intent] {
			factor *= b.cfg.IntentAffinityBoost
		}
	} else if ticketAffinityIntents[intent] {
		factor *= b.cfg.IntentAffinityBoost
	}
	docType := strings.ToLower(c.DocType)
	for _, fragment := range intentDocTypes[intent] {
		if strings.Contains(docType, fragment) {
			factor *= b.cfg.IntentDocTypeBoost
			break
		}
	}
	return factor
}
