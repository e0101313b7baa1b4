package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/pkg/utils"
)

// applyTopKLimits fills an unset top_k from configuration and clamps requests
// to the configured ceiling. The protocol cap in models still applies on top.
func (s *Server) applyTopKLimits(req *models.AnswerQuery) {
	if req.TopK <= 0 {
		req.TopK = s.config.Retrieval.TopK
	}
	if max := s.config.Retrieval.MaxTopK; max > 0 && req.TopK > max {
		req.TopK = max
	}
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.applyTopKLimits(&req)
	s.logger.Debug("answer request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	res, err := s.engine.Answer(r.Context(), &req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// rankTrace is the /rank response: the ranked candidates with their raw and
// fused scores and the boost chain that produced them.
type rankTrace struct {
	Query      string           `json:"query"`
	Intent     string           `json:"intent,omitempty"`
	Version    string           `json:"version,omitempty"`
	Candidates []candidateTrace `json:"candidates"`
}

type candidateTrace struct {
	ChunkID      string              `json:"chunk_id"`
	Title        string              `json:"title"`
	Source       string              `json:"source"`
	Section      string              `json:"section,omitempty"`
	Version      string              `json:"version,omitempty"`
	TextPreview  string              `json:"text_preview"`
	SemanticNorm float64             `json:"semantic_norm"`
	LexicalNorm  float64             `json:"lexical_norm"`
	FusedScore   float64             `json:"fused_score"`
	BoostLog     []models.BoostEntry `json:"boost_log,omitempty"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyTopKLimits(&req)

	qc := s.engine.ParseQuery(req.Query, req.Version)
	cands := s.engine.Rank(r.Context(), qc, req.TopK)

	trace := rankTrace{
		Query:      qc.Raw,
		Intent:     qc.Intent,
		Version:    qc.EffectiveVersion(),
		Candidates: make([]candidateTrace, len(cands)),
	}
	for i, c := range cands {
		trace.Candidates[i] = candidateTrace{
			ChunkID:      c.Chunk.ID,
			Title:        c.Chunk.Title,
			Source:       string(c.Chunk.Source),
			Section:      c.Chunk.Section,
			Version:      c.Chunk.Version,
			TextPreview:  utils.Truncate(c.Chunk.Text, 200),
			SemanticNorm: c.SemanticNorm,
			LexicalNorm:  c.LexicalNorm,
			FusedScore:   c.FusedScore,
			BoostLog:     c.BoostLog,
		}
	}
	s.respondJSON(w, http.StatusOK, trace)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, err := s.manager.Rebuild(r.Context())
	if err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"snapshot_id":  snap.ID.String(),
		"chunks":       snap.Size(),
		"vector_index": snap.Vector != nil,
		"took_ms":      time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Chunk ids contain '#', which arrives percent-encoded.
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	// Prefer the live snapshot; fall back to the store when the chunk only
	// exists in the persisted copy.
	if snap := s.engine.Snapshot(); snap != nil {
		if chunk := snap.Chunk(id); chunk != nil {
			s.respondJSON(w, http.StatusOK, chunk)
			return
		}
	}
	if s.store != nil {
		if chunk, err := s.store.GetChunk(r.Context(), id); err == nil {
			s.respondJSON(w, http.StatusOK, chunk)
			return
		}
	}
	s.respondError(w, http.StatusNotFound, "chunk not found")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"snapshot": nil,
	}
	if snap := s.engine.Snapshot(); snap != nil {
		status["snapshot"] = map[string]any{
			"id":           snap.ID.String(),
			"built_at":     snap.BuiltAt.Format(time.RFC3339),
			"chunks":       snap.Size(),
			"vector_index": snap.Vector != nil,
		}
	}
	if s.store != nil {
		if n, err := s.store.CountChunks(r.Context()); err == nil {
			status["stored_chunks"] = n
		}
		status["disk_usage_bytes"] = storage.DiskUsageBytes(s.config.Storage.DatabasePath)
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusServiceUnavailable, "persistence is disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	chunks, err := s.store.ListChunks(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"chunks": chunks,
		"count":  len(chunks),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
