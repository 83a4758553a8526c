// Package chi exposes the draft API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/logger"
	draftuc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/draft"
	healthuc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers for the draft API.
type Server struct {
	drafts        *draftuc.Service
	retriever     domain.Retriever
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(drafts *draftuc.Service, retriever domain.Retriever, health *healthuc.Service) *Server {
	s := &Server{
		drafts:    drafts,
		retriever: retriever,
		health:    health,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDraftNotFound, http.StatusNotFound, "draft_not_found"),
		sentinelHandler(domain.ErrAnalysisNotFound, http.StatusNotFound, "analysis_not_found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, "already_exists"),
		sentinelHandler(domain.ErrRetrieverUnavailable, http.StatusServiceUnavailable, "retriever_unavailable"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrIndexCorrupted, http.StatusInternalServerError, "index_corrupted"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, "vector_dim_mismatch"),
	}
	return s
}

// Routes mounts the API on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/healthz", s.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/drafts", s.CreateDraft)
	r.Get("/drafts", s.ListDrafts)
	r.Get("/drafts/{draftID}", s.GetDraft)
	r.Post("/drafts/{draftID}/analyze", s.AnalyzeDraft)
	r.Get("/drafts/{draftID}/analysis", s.GetAnalysis)

	r.Get("/search", s.Search)
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Draft Analysis API",
		"version": "1.0.0",
	})
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

type createDraftRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CPV         string `json:"cpv,omitempty"`
}

// CreateDraft handles POST /drafts.
func (s *Server) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "title is required")
		return
	}

	d, err := s.drafts.Create(r.Context(), req.Title, req.Description, req.CPV)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// ListDrafts handles GET /drafts.
func (s *Server) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.drafts.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	writeJSON(w, http.StatusOK, drafts)
}

// GetDraft handles GET /drafts/{draftID}.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Get(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// AnalyzeDraft handles POST /drafts/{draftID}/analyze. Repeat calls return
// the cached analysis; ?force=true regenerates.
func (s *Server) AnalyzeDraft(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	rec, err := s.drafts.Analyze(r.Context(), chi.URLParam(r, "draftID"), force)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetAnalysis handles GET /drafts/{draftID}/analysis.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.drafts.GetAnalysis(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type searchResponse struct {
	Query   string              `json:"query"`
	Results []searchResultEntry `json:"results"`
}

type searchResultEntry struct {
	Notice domain.Notice `json:"notice"`
	Score  float64       `json:"score"`
}

// Search handles GET /search?q=...&k=10.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query parameter q is required")
		return
	}

	k := domain.DefaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "validation_failed", "k must be a positive integer")
			return
		}
		k = parsed
	}

	results, err := s.retriever.Retrieve(r.Context(), query, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	entries := make([]searchResultEntry, len(results))
	for i, res := range results {
		entries[i] = searchResultEntry{Notice: res.Notice, Score: res.Score}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: entries})
}

// handleDomainError walks the sentinel handlers; anything unhandled is a 500,
// logged through the request-scoped logger.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// sentinelHandler maps a sentinel error to a status and code.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if errors.Is(err, sentinel) {
			writeError(w, status, code, err.Error())
			return true
		}
		return false
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
