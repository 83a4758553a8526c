package retrieval

import (
	"context"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Strategy names a retrieval backend.
type Strategy string

const (
	// StrategyDense retrieves via embedding vectors in the dense index.
	StrategyDense Strategy = "dense"
	// StrategySparse retrieves via the TF-IDF index.
	StrategySparse Strategy = "sparse"
)

// DenseIndex is the vector index contract used by the dense strategy.
type DenseIndex interface {
	Search(query []float32, k int) ([]domain.ScoredNotice, error)
	Len() int
}

// SparseIndex is the TF-IDF contract used by the sparse strategy and the
// dense strategy's fallback.
type SparseIndex interface {
	Query(text string, k int) ([]domain.ScoredNotice, error)
}

// Embedder vectorizes query text for the dense strategy.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
