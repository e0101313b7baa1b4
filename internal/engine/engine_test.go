package engine

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/semantic"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func buildEngine(t *testing.T, docs []*models.Document, withSemantic bool) *Engine {
	t.Helper()

	var emb embedding.Embedder
	if withSemantic {
		emb = embedding.NewHashEmbedder(128)
	}
	builder := corpus.NewBuilder(emb, 4, 0, zap.NewNop())
	snap, err := builder.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	var holder corpus.Holder
	holder.Store(snap)

	var searcher *semantic.Searcher
	if withSemantic {
		searcher = semantic.NewSearcher(emb, 2, time.Second)
	}
	rcfg := ranking.DefaultConfig()
	eng, err := New(
		&holder,
		searcher,
		ranking.NewReranker(rcfg, ranking.DefaultBoosts(rcfg, fixedNow)),
		answer.NewComposer(answer.DefaultConfig(), fixedNow),
		query.NewRuleClassifier(),
		nil,
		zap.NewNop(),
		true,
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func doc(id, title, version, content string) *models.Document {
	return &models.Document{
		ID: id, Title: title, Type: "user_guide", Version: version,
		LastUpdated: testNow.AddDate(0, -1, 0), Content: content,
		Source: models.SourceDoc, Status: models.StatusNone,
		Tags: []string{"sync", "desktop"},
	}
}

func ticket(id, title, status, content string) *models.Document {
	st := models.StatusPending
	if status == "resolved" {
		st = models.StatusResolved
	}
	return &models.Document{
		ID: id, Title: title, Type: "troubleshooting",
		LastUpdated: testNow.AddDate(0, -1, 0), Content: content,
		Source: models.SourceTicket, Status: st,
		Tags: []string{"sync", "desktop"},
	}
}

func TestNew_RequiresACapability(t *testing.T) {
	var holder corpus.Holder
	if _, err := New(&holder, nil, nil, nil, nil, nil, zap.NewNop(), false); err == nil {
		t.Fatal("neither capability configured must be a startup error")
	}
}

func TestAnswer_VersionedQuerySelectsMatchingChunk(t *testing.T) {
	docs := []*models.Document{
		doc("doc-20", "Restore Files", "2.0", "Click Restore next to the file in the History panel. Applies to v2.0."),
		doc("doc-21", "Restore Files", "2.1", "Click Restore next to the file in the History panel. Applies to v2.1."),
	}
	eng := buildEngine(t, docs, true)

	res, err := eng.Answer(context.Background(), &models.AnswerQuery{
		Query: "how do I restore a file on v2.0", TopK: 4,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(res.Citations) == 0 {
		t.Fatal("expected citations")
	}
	if res.Citations[0].Version != "2.0" {
		t.Errorf("top citation version = %q, want 2.0", res.Citations[0].Version)
	}
	if res.HasWarning(models.WarningVersionMismatch) {
		t.Error("matching version material exists, version_mismatch must not fire")
	}
}

func TestAnswer_DeclaredVersionContext(t *testing.T) {
	docs := []*models.Document{
		doc("doc-20", "Restore Files", "2.0", "Click Restore next to the file in the History panel. Applies to v2.0."),
		doc("doc-21", "Restore Files", "2.1", "Click Restore next to the file in the History panel. Applies to v2.1."),
	}
	eng := buildEngine(t, docs, true)

	res, err := eng.Answer(context.Background(), &models.AnswerQuery{
		Query: "how do I restore a file", TopK: 4, Version: "v2.1",
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Citations[0].Version != "2.1" {
		t.Errorf("declared version context must prefer 2.1, got %q", res.Citations[0].Version)
	}
	if res.HasWarning(models.WarningVersionMismatch) {
		t.Error("version_mismatch must not fire when the matching chunk wins")
	}
}

func TestAnswer_ConflictingTickets(t *testing.T) {
	docs := []*models.Document{
		ticket("tick-1", "Sync stuck after update", "resolved",
			"Sync stuck after update was resolved by clearing the local cache and restarting the client."),
		ticket("tick-2", "Sync stuck after update", "pending",
			"Sync stuck after update, still investigating. Reinstalling did not help."),
	}
	eng := buildEngine(t, docs, true)

	res, err := eng.Answer(context.Background(), &models.AnswerQuery{
		Query: "sync stuck after update", TopK: 4,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasWarning(models.WarningConflicting) {
		t.Errorf("contradictory tickets must raise conflicting_sources, got %v", res.Warnings)
	}
}

func TestAnswer_NoMatchesIsInsufficient(t *testing.T) {
	docs := []*models.Document{
		doc("doc-1", "Billing FAQ", "", "Invoices are emailed monthly to the account owner."),
	}
	// Lexical-only engine: no semantic neighbors can rescue the query.
	eng := buildEngine(t, docs, false)

	res, err := eng.Answer(context.Background(), &models.AnswerQuery{
		Query: "zebra quantum telescope", TopK: 4,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasWarning(models.WarningInsufficient) {
		t.Errorf("no candidates must raise insufficient_evidence, got %v", res.Warnings)
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %f, want exactly 0", res.Confidence)
	}
}

func TestAnswer_DegradesWithoutVectorIndex(t *testing.T) {
	docs := []*models.Document{
		doc("doc-1", "Sync Guide", "", "Restart the client to recover from sync errors."),
	}
	// Snapshot has no vector index, but a searcher is configured: the
	// semantic leg reports unavailable and the lexical leg still answers.
	builder := corpus.NewBuilder(nil, 4, 0, zap.NewNop())
	snap, err := builder.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	var holder corpus.Holder
	holder.Store(snap)

	rcfg := ranking.DefaultConfig()
	eng, err := New(
		&holder,
		semantic.NewSearcher(embedding.NewHashEmbedder(64), 2, time.Second),
		ranking.NewReranker(rcfg, ranking.DefaultBoosts(rcfg, fixedNow)),
		answer.NewComposer(answer.DefaultConfig(), fixedNow),
		query.NewRuleClassifier(),
		nil,
		zap.NewNop(),
		true,
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	res, err := eng.Answer(context.Background(), &models.AnswerQuery{
		Query: "sync errors", TopK: 4,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.HasWarning(models.WarningInsufficient) {
		t.Error("lexical results must still produce an answer")
	}
	if len(res.Citations) == 0 {
		t.Error("expected citations from the lexical leg")
	}
}

func TestAnswer_EmptyCorpus(t *testing.T) {
	eng := buildEngine(t, nil, false)
	res, err := eng.Answer(context.Background(), &models.AnswerQuery{Query: "anything", TopK: 4})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasWarning(models.WarningInsufficient) {
		t.Error("empty corpus must surface as insufficient_evidence, not an error")
	}
}

func TestAnswer_ValidatesRequest(t *testing.T) {
	eng := buildEngine(t, nil, false)
	if _, err := eng.Answer(context.Background(), &models.AnswerQuery{Query: "   "}); err == nil {
		t.Error("blank query must be rejected")
	}
}

func TestRank_Deterministic(t *testing.T) {
	docs := []*models.Document{
		doc("doc-1", "Sync Guide", "", "Restart the client to recover from sync errors."),
		doc("doc-2", "Sync Internals", "", "Sync uses delta encoding for changed blocks."),
		ticket("tick-1", "Sync errors on laptop", "resolved", "Cache reset fixed the sync errors."),
	}
	eng := buildEngine(t, docs, true)
	qc := eng.ParseQuery("sync errors", "")

	first := eng.Rank(context.Background(), qc, 5)
	for i := 0; i < 3; i++ {
		next := eng.Rank(context.Background(), qc, 5)
		if len(next) != len(first) {
			t.Fatalf("run %d: length %d vs %d", i, len(next), len(first))
		}
		for j := range next {
			if next[j].Chunk.ID != first[j].Chunk.ID {
				t.Fatalf("run %d: position %d differs: %s vs %s", i, j, next[j].Chunk.ID, first[j].Chunk.ID)
			}
		}
	}
}
