// Package answer composes ranked candidates into a cited, confidence-scored
// answer and flags edge cases as warnings.
package answer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
)

// Config holds composition thresholds.
type Config struct {
	// RelevanceFloor excludes candidates below this fused score even when
	// they would fit in the top k.
	RelevanceFloor float64 `yaml:"relevance_floor"`
	// FreshnessDays is the age beyond which the top result is a candidate
	// for the outdated warning.
	FreshnessDays int `yaml:"freshness_days"`
	// MaxSelected caps how many chunks contribute to one answer.
	MaxSelected int `yaml:"max_selected"`
	// MaxBullets caps the answer body length.
	MaxBullets int `yaml:"max_bullets"`
}

// DefaultConfig returns the standard composition thresholds.
func DefaultConfig() Config {
	return Config{
		RelevanceFloor: 0.05,
		FreshnessDays:  365,
		MaxSelected:    6,
		MaxBullets:     8,
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.RelevanceFloor == 0 {
		c.RelevanceFloor = def.RelevanceFloor
	}
	if c.FreshnessDays == 0 {
		c.FreshnessDays = def.FreshnessDays
	}
	if c.MaxSelected == 0 {
		c.MaxSelected = def.MaxSelected
	}
	if c.MaxBullets == 0 {
		c.MaxBullets = def.MaxBullets
	}
}

// Composer builds AnswerResults from ranked candidates. It is stateless per
// call; now is injectable for the freshness checks.
type Composer struct {
	cfg Config
	now func() time.Time
}

// NewComposer creates a Composer. nil now means time.Now.
func NewComposer(cfg Config, now func() time.Time) *Composer {
	cfg.ApplyDefaults()
	if now == nil {
		now = time.Now
	}
	return &Composer{cfg: cfg, now: now}
}

const noEvidenceAnswer = "I don't have enough information to answer that yet. " +
	"Try rephrasing the question or adding more detail."

// Compose turns ranked candidates into an answer with citations, confidence,
// and warnings. An empty or below-floor candidate list yields the
// insufficient-evidence warning with confidence exactly zero; any non-empty
// selection has confidence at least 0.2.
func (cm *Composer) Compose(qc *query.Context, cands []*models.Candidate) *models.AnswerResult {
	selected := cm.selectCandidates(cands)
	if len(selected) == 0 {
		return &models.AnswerResult{
			Query:      qc.Raw,
			Answer:     noEvidenceAnswer,
			Confidence: 0,
			Warnings:   []models.Warning{models.WarningInsufficient},
		}
	}

	warnings := cm.detectWarnings(qc, selected, cands)
	body := cm.composeBody(qc, selected, warnings)

	citations := make([]models.Citation, len(selected))
	for i, cand := range selected {
		citations[i] = cand.Chunk.Citation()
	}

	return &models.AnswerResult{
		Query:      qc.Raw,
		Answer:     body,
		Citations:  citations,
		Confidence: cm.confidence(selected),
		Warnings:   warnings,
	}
}

// selectCandidates applies the relevance floor, drops near-duplicates of an
// already selected chunk, and caps the selection size.
func (cm *Composer) selectCandidates(cands []*models.Candidate) []*models.Candidate {
	var selected []*models.Candidate
	for _, cand := range cands {
		if cand.FusedScore < cm.cfg.RelevanceFloor {
			continue
		}
		if isDuplicate(selected, cand) {
			continue
		}
		selected = append(selected, cand)
		if len(selected) == cm.cfg.MaxSelected {
			break
		}
	}
	return selected
}

// isDuplicate reports whether cand repeats a selected chunk: same document
// and the same or an overlapping section.
func isDuplicate(selected []*models.Candidate, cand *models.Candidate) bool {
	for _, s := range selected {
		if s.Chunk.DocID != cand.Chunk.DocID {
			continue
		}
		if sectionsOverlap(strings.ToLower(s.Chunk.Section), strings.ToLower(cand.Chunk.Section)) {
			return true
		}
	}
	return false
}

// sectionsOverlap matches equal labels and continuation labels that extend a
// selected one ("setup" vs "setup (cont. 2)"). The shorter label must end on
// a word boundary in the longer one, so "part 1" never swallows "part 12".
func sectionsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.HasPrefix(longer, shorter) {
		return false
	}
	next := longer[len(shorter)]
	return !(next >= 'a' && next <= 'z') && !(next >= '0' && next <= '9')
}

var stepLineRE = regexp.MustCompile(`^(\d+[.)]|-|\*|step\b)`)

// stepsWording matches query phrasings that read best as a numbered how-to.
var stepsWording = []string{"how do i", "how can i", "what should i do", "troubleshoot", "fix", "steps"}

// composeBody merges selected chunk content into bullets, keeping enumerated
// steps verbatim, then appends explicit notes for version and conflict
// warnings so the caller never has to infer them from flags alone.
func (cm *Composer) composeBody(qc *query.Context, selected []*models.Candidate, warnings []models.Warning) string {
	var lines []string
	lower := strings.ToLower(qc.Raw)
	for _, w := range stepsWording {
		if strings.Contains(lower, w) {
			lines = append(lines, "Here are the steps:")
			break
		}
	}

	seen := make(map[string]bool)
	bullets := 0
	for _, cand := range selected {
		for _, raw := range chunkLines(cand.Chunk.Text) {
			key := strings.ToLower(raw)
			if seen[key] {
				continue
			}
			seen[key] = true
			if stepLineRE.MatchString(key) {
				lines = append(lines, raw)
			} else {
				lines = append(lines, "- "+raw)
			}
			bullets++
			if bullets == cm.cfg.MaxBullets {
				break
			}
		}
		if bullets == cm.cfg.MaxBullets {
			break
		}
	}

	result := &models.AnswerResult{Warnings: warnings}
	if result.HasWarning(models.WarningVersionMismatch) {
		lines = append(lines, fmt.Sprintf(
			"Note: the best available material covers version %s, while the question mentions %s. Details may differ between versions.",
			orUnknown(selected[0].Chunk.Version), orUnknown(qc.EffectiveVersion())))
	}
	if result.HasWarning(models.WarningConflicting) {
		lines = append(lines,
			"Note: the cited sources disagree with each other. Both the current guidance and the open reports are included above.")
	}
	return strings.Join(lines, "\n")
}

// chunkLines splits chunk text into trimmed non-empty lines. Chunks without
// line structure contribute their leading sentences instead.
func chunkLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 1 && !stepLineRE.MatchString(strings.ToLower(out[0])) {
		return splitSentences(out[0], 2)
	}
	return out
}

// splitSentences returns up to max sentences from text.
func splitSentences(text string, max int) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
		if len(out) == max {
			return out
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" && len(out) < max {
		out = append(out, s)
	}
	return out
}

// confidence maps (top score, first-to-second margin, corroboration count)
// onto [0.2, 0.98]. Monotonic in each input; never zero for a non-empty
// selection.
func (cm *Composer) confidence(selected []*models.Candidate) float64 {
	top := selected[0].FusedScore
	if top > 1 {
		top = 1
	}
	margin := 0.0
	if len(selected) > 1 {
		margin = top - selected[1].FusedScore
		if margin < 0 {
			margin = 0
		}
	}
	corroboration := float64(min(len(selected)-1, 2)) / 2

	conf := 0.2 + 0.5*top + 0.2*margin + 0.1*corroboration
	if conf > 0.98 {
		conf = 0.98
	}
	if conf < 0.2 {
		conf = 0.2
	}
	return conf
}

func orUnknown(v string) string {
	if v == "" {
		return "an unknown version"
	}
	return v
}

// sortWarnings keeps warning order stable for callers and tests.
func sortWarnings(ws []models.Warning) []models.Warning {
	sort.Slice(ws, func(i, j int) bool { return ws[i] < ws[j] })
	return ws
}
