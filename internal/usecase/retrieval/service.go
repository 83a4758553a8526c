// Package retrieval selects and runs a retrieval strategy over the notice
// corpus. Two backends implement one capability: the dense vector index and
// the sparse TF-IDF index; configuration picks the active one at startup.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/metrics"
)

// Service routes retrieval queries to the configured strategy.
type Service struct {
	strategy Strategy
	embed    Embedder
	dense    DenseIndex
	sparse   SparseIndex
	logger   *zap.Logger
}

var _ domain.Retriever = (*Service)(nil)

// New creates a retrieval service for the given strategy. For StrategyDense,
// embed and dense are required and sparse is the optional fallback used when
// the embedding provider is unavailable; for StrategySparse only sparse is
// consulted.
func New(strategy Strategy, embed Embedder, dense DenseIndex, sparse SparseIndex, logger *zap.Logger) (*Service, error) {
	switch strategy {
	case StrategyDense:
		if embed == nil || dense == nil {
			return nil, fmt.Errorf("dense strategy requires an embedder and a dense index")
		}
	case StrategySparse:
		if sparse == nil {
			return nil, fmt.Errorf("sparse strategy requires a sparse index")
		}
	default:
		return nil, fmt.Errorf("unknown retrieval strategy %q", strategy)
	}
	return &Service{strategy: strategy, embed: embed, dense: dense, sparse: sparse, logger: logger}, nil
}

// Strategy returns the configured strategy.
func (s *Service) Strategy() Strategy { return s.strategy }

// Retrieve implements domain.Retriever. A failing embedding provider on the
// dense path switches to the sparse fallback when one is configured; the
// switch is logged and counted, never silent. Without a fallback the
// unavailable condition surfaces to the caller.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredNotice, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	if s.strategy == StrategySparse {
		return s.querySparse(query, k)
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		if s.sparse != nil {
			s.logger.Warn("embedding unavailable, switching to sparse retrieval",
				zap.Error(err))
			metrics.RetrievalFallbacksTotal.Inc()
			return s.querySparse(query, k)
		}
		metrics.RetrievalsTotal.WithLabelValues(string(StrategyDense), "error").Inc()
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrRetrieverUnavailable, err)
	}

	results, err := s.dense.Search(embRes.Embedding, k)
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues(string(StrategyDense), "error").Inc()
		return nil, fmt.Errorf("dense search: %w", err)
	}
	metrics.RetrievalsTotal.WithLabelValues(string(StrategyDense), "success").Inc()
	return results, nil
}

func (s *Service) querySparse(query string, k int) ([]domain.ScoredNotice, error) {
	results, err := s.sparse.Query(query, k)
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues(string(StrategySparse), "error").Inc()
		return nil, fmt.Errorf("sparse query: %w", err)
	}
	metrics.RetrievalsTotal.WithLabelValues(string(StrategySparse), "success").Inc()
	return results, nil
}
