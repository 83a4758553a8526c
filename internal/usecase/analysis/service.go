// Package analysis turns a draft plus its retrieved neighbors into a
// schema-validated structured assessment. One analyze call walks a small
// state machine: build prompt, call the generative backend, parse and
// validate; one strict retry on malformed output; deterministic heuristic
// fallback on repeated failure or backend unavailability. The fallback is the
// terminal state, never an error — callers always get a valid analysis.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/metrics"
)

// Backend is the generative completion contract.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service generates structured analyses.
type Service struct {
	engine   domain.AnalysisEngine
	backend  Backend
	timeout  time.Duration
	maxChars int
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each backend call (the initial attempt and the strict
// retry are bounded independently).
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxExcerptChars bounds every free-text field rendered into the prompt.
func WithMaxExcerptChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// New creates an analysis service. engine is resolved once at configuration
// time: EngineHeuristic never touches a backend, EngineGenerative requires
// one and degrades to the heuristic per call on failure.
func New(engine domain.AnalysisEngine, backend Backend, logger *zap.Logger, opts ...Option) (*Service, error) {
	if engine == domain.EngineGenerative && backend == nil {
		return nil, fmt.Errorf("generative engine requires a backend")
	}
	s := &Service{
		engine:   engine,
		backend:  backend,
		timeout:  120 * time.Second,
		maxChars: 800,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the configured engine.
func (s *Service) Engine() domain.AnalysisEngine { return s.engine }

// Analyze produces a structured analysis for the draft given its retrieved
// neighbors. The returned engine tag names the path that actually produced
// the result, so a degraded heuristic answer is always distinguishable from a
// full generative one. The only error returned is the caller's own context
// cancellation; every backend failure resolves to the fallback.
func (s *Service) Analyze(
	ctx context.Context, draft domain.Draft, neighbors []domain.ScoredNotice,
) (domain.Analysis, domain.AnalysisEngine, error) {
	start := time.Now()
	a, engine, err := s.analyze(ctx, draft, neighbors)
	if err != nil {
		return domain.Analysis{}, "", err
	}
	metrics.AnalysesTotal.WithLabelValues(string(engine)).Inc()
	metrics.AnalysisDuration.WithLabelValues(string(engine)).Observe(time.Since(start).Seconds())
	return a, engine, nil
}

func (s *Service) analyze(
	ctx context.Context, draft domain.Draft, neighbors []domain.ScoredNotice,
) (domain.Analysis, domain.AnalysisEngine, error) {
	if s.engine == domain.EngineHeuristic {
		return heuristicAnalysis(draft, neighbors, ""), domain.EngineHeuristic, nil
	}

	prompt := buildPrompt(draft, neighbors, s.maxChars)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		return s.fallback(ctx, draft, neighbors, "backend_unavailable",
			"The generative backend was unavailable; this analysis was produced by the deterministic keyword heuristic.",
			err)
	}

	a, parseErr := parseAnalysis(raw)
	if parseErr == nil {
		return a, domain.EngineGenerative, nil
	}

	// Exactly one retry with the strict JSON-only directive appended.
	s.logger.Warn("generative response failed validation, retrying with strict prompt",
		zap.String("draft_id", draft.ID), zap.Error(parseErr))
	metrics.AnalysisRetriesTotal.Inc()

	raw, err = s.complete(ctx, prompt+strictPromptSuffix)
	if err != nil {
		return s.fallback(ctx, draft, neighbors, "backend_unavailable",
			"The generative backend became unavailable during the strict retry; this analysis was produced by the deterministic keyword heuristic.",
			err)
	}

	a, parseErr = parseAnalysis(raw)
	if parseErr == nil {
		return a, domain.EngineGenerative, nil
	}

	return s.fallback(ctx, draft, neighbors, "malformed_output",
		"The generative backend returned malformed output twice; this analysis was produced by the deterministic keyword heuristic.",
		parseErr)
}

// complete runs one bounded backend call.
func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.Complete(callCtx, prompt)
}

// fallback resolves a failed generative path to the heuristic terminal state,
// unless the caller itself has gone away.
func (s *Service) fallback(
	ctx context.Context, draft domain.Draft, neighbors []domain.ScoredNotice,
	reason, caveat string, cause error,
) (domain.Analysis, domain.AnalysisEngine, error) {
	if ctx.Err() != nil && !errors.Is(cause, domain.ErrMalformedAnalysis) {
		return domain.Analysis{}, "", fmt.Errorf("analysis canceled: %w", ctx.Err())
	}

	s.logger.Warn("generative analysis failed, using heuristic fallback",
		zap.String("draft_id", draft.ID),
		zap.String("reason", reason),
		zap.Error(cause))
	metrics.AnalysisFallbacksTotal.WithLabelValues(reason).Inc()

	return heuristicAnalysis(draft, neighbors, caveat), domain.EngineHeuristic, nil
}
