// Package draft orchestrates the draft lifecycle: CRUD plus the analyze
// operation, which retrieves similar notices, generates a structured
// analysis, and caches the result per draft.
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Service handles draft operations.
type Service struct {
	store     Store
	retriever domain.Retriever
	analyzer  Analyzer
	topK      int
	logger    *zap.Logger
}

// New creates a draft service.
func New(store Store, retriever domain.Retriever, analyzer Analyzer, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		retriever: retriever,
		analyzer:  analyzer,
		topK:      domain.DefaultTopK,
		logger:    logger,
	}
}

// WithTopK overrides the neighbor count used during analysis.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Create stores a new draft.
func (s *Service) Create(ctx context.Context, title, description, cpv string) (domain.Draft, error) {
	if title == "" {
		return domain.Draft{}, fmt.Errorf("title is required")
	}
	d := domain.Draft{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CPV:         cpv,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDraft(ctx, d); err != nil {
		return domain.Draft{}, fmt.Errorf("create draft: %w", err)
	}
	return d, nil
}

// Get fetches a draft.
func (s *Service) Get(ctx context.Context, id string) (domain.Draft, error) {
	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

// List returns all drafts, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Draft, error) {
	drafts, err := s.store.ListDrafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// Analyze produces the structured analysis for a draft. The operation is
// idempotent: a repeat call returns the cached record instead of regenerating.
// force discards the cache and writes a fresh record (explicit re-analyze).
func (s *Service) Analyze(ctx context.Context, draftID string, force bool) (domain.AnalysisRecord, error) {
	d, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("get draft: %w", err)
	}

	if !force {
		cached, err := s.store.GetAnalysis(ctx, draftID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrAnalysisNotFound) {
			return domain.AnalysisRecord{}, fmt.Errorf("read cached analysis: %w", err)
		}
	}

	neighbors, err := s.retriever.Retrieve(ctx, d.QueryText(), s.topK)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("retrieve similar notices: %w", err)
	}

	analysis, engine, err := s.analyzer.Analyze(ctx, d, neighbors)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("analyze draft: %w", err)
	}

	rec := domain.AnalysisRecord{
		ID:        uuid.NewString(),
		DraftID:   draftID,
		Engine:    engine,
		Analysis:  analysis,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveAnalysis(ctx, rec); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("save analysis: %w", err)
	}

	s.logger.Info("draft analyzed",
		zap.String("draft_id", draftID),
		zap.String("engine", string(engine)),
		zap.Int("neighbors", len(neighbors)),
		zap.Bool("forced", force))
	return rec, nil
}

// GetAnalysis returns the stored analysis for a draft.
func (s *Service) GetAnalysis(ctx context.Context, draftID string) (domain.AnalysisRecord, error) {
	rec, err := s.store.GetAnalysis(ctx, draftID)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}
