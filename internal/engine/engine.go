// Package engine runs the full query pipeline: parse, retrieve from both
// indexes in parallel, fuse and re-rank, then compose an answer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/semantic"
)

// Engine answers queries against the current corpus snapshot. All methods are
// safe for concurrent use; each query reads one immutable snapshot.
type Engine struct {
	holder     *corpus.Holder
	searcher   *semantic.Searcher
	reranker   *ranking.Reranker
	composer   *answer.Composer
	classifier query.Classifier
	metrics    *metrics.Metrics
	logger     *zap.Logger

	lexicalEnabled bool
}

// New wires the pipeline. searcher may be nil (semantic disabled) and
// lexicalEnabled may be false, but not both: a service with neither
// capability cannot answer anything, which is a configuration error reported
// here once rather than on every query.
func New(
	holder *corpus.Holder,
	searcher *semantic.Searcher,
	reranker *ranking.Reranker,
	composer *answer.Composer,
	classifier query.Classifier,
	m *metrics.Metrics,
	logger *zap.Logger,
	lexicalEnabled bool,
) (*Engine, error) {
	if !lexicalEnabled && searcher == nil {
		return nil, fmt.Errorf("no search capability configured: enable lexical search or provide a semantic searcher")
	}
	return &Engine{
		holder:         holder,
		searcher:       searcher,
		reranker:       reranker,
		composer:       composer,
		classifier:     classifier,
		metrics:        m,
		logger:         logger,
		lexicalEnabled: lexicalEnabled,
	}, nil
}

// ParseQuery builds the query context using the engine's classifier.
func (e *Engine) ParseQuery(text, declaredVersion string) *query.Context {
	return query.Parse(text, declaredVersion, e.classifier)
}

// Snapshot returns the active corpus snapshot, or nil before the first build.
func (e *Engine) Snapshot() *corpus.Snapshot {
	return e.holder.Load()
}

// Rank runs both retrievers and returns the top k re-ranked candidates. A
// missing or empty snapshot yields an empty list; a semantic outage degrades
// to lexical-only results.
func (e *Engine) Rank(ctx context.Context, qc *query.Context, k int) []*models.Candidate {
	snap := e.holder.Load()
	if snap == nil || snap.Size() == 0 {
		return nil
	}

	// Both retrievers overfetch so the re-ranker can reorder across sources.
	kCand := 4 * k
	if kCand < 32 {
		kCand = 32
	}

	var (
		wg  sync.WaitGroup
		lex []lexical.Result
		sem []semantic.Result
	)
	if e.lexicalEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lex = snap.Lexical.Search(qc.Expanded, kCand)
		}()
	}
	if e.searcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.searcher.Search(ctx, snap.Vector, qc.Raw, k)
			if err != nil {
				if errors.Is(err, semantic.ErrSearchUnavailable) {
					e.logger.Warn("semantic search unavailable, degrading to lexical",
						zap.Error(err))
					return
				}
				e.logger.Error("semantic search failed", zap.Error(err))
				return
			}
			sem = results
		}()
	}
	wg.Wait()

	return e.reranker.Rerank(qc, lex, sem, snap.ChunkMap(), k)
}

// Answer validates the request and runs the full pipeline.
func (e *Engine) Answer(ctx context.Context, req *models.AnswerQuery) (*models.AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	qc := e.ParseQuery(req.Query, req.Version)
	cands := e.Rank(ctx, qc, req.TopK)
	res := e.composer.Compose(qc, cands)

	if e.metrics != nil {
		status := "answered"
		if res.HasWarning(models.WarningInsufficient) {
			status = "insufficient"
		}
		e.metrics.ObserveQuery(status, time.Since(start))
	}
	e.logger.Debug("answered query",
		zap.String("query", req.Query),
		zap.Int("candidates", len(cands)),
		zap.Float64("confidence", res.Confidence),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
