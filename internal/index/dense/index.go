// Package dense provides an in-memory flat vector index over notices with
// snapshot persistence. Search is exact (brute force): the corpus is small
// enough that approximate structures would only add moving parts.
package dense

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Metric is the similarity metric of an index instance. It is fixed at
// construction; changing it requires a full rebuild because scores from
// different metrics are not comparable.
type Metric string

const (
	// MetricCosine scores by cosine similarity, clamped to [0,1].
	MetricCosine Metric = "cosine"
	// MetricL2 scores by inverted Euclidean distance, 1/(1+d).
	MetricL2 Metric = "l2"
)

// Index is a flat vector index. A single writer (Add, Load) is serialized
// against concurrent readers (Search); readers never observe a partially
// inserted notice.
type Index struct {
	mu         sync.RWMutex
	metric     Metric
	dimensions int
	notices    []domain.Notice
	vectors    [][]float32
}

// New creates an empty index with a fixed metric and vector dimension.
func New(metric Metric, dimensions int) *Index {
	return &Index{metric: metric, dimensions: dimensions}
}

// Metric returns the index's similarity metric.
func (ix *Index) Metric() Metric { return ix.metric }

// Dimensions returns the fixed vector length of the index.
func (ix *Index) Dimensions() int { return ix.dimensions }

// Len returns the number of indexed notices.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.notices)
}

// Notices returns a copy of the indexed notices in insertion order.
func (ix *Index) Notices() []domain.Notice {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]domain.Notice(nil), ix.notices...)
}

// Add appends a notice with its vector. Notices are append-only; duplicate
// IDs are rejected.
func (ix *Index) Add(notice domain.Notice, vector []float32) error {
	if len(vector) != ix.dimensions {
		return fmt.Errorf("vector has %d dimensions, index expects %d: %w",
			len(vector), ix.dimensions, domain.ErrVectorDimMismatch)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, n := range ix.notices {
		if n.ID == notice.ID {
			return fmt.Errorf("notice %q: %w", notice.ID, domain.ErrAlreadyExists)
		}
	}

	ix.notices = append(ix.notices, notice)
	ix.vectors = append(ix.vectors, vector)
	return nil
}

// Search returns the top-k notices by similarity to the query vector, ordered
// by non-increasing score. At most min(k, len) results come back; ties keep
// insertion order (the sort is stable over a slice built in insertion order).
func (ix *Index) Search(query []float32, k int) ([]domain.ScoredNotice, error) {
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d: %w",
			len(query), ix.dimensions, domain.ErrVectorDimMismatch)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scored := make([]domain.ScoredNotice, len(ix.notices))
	for i, vec := range ix.vectors {
		scored[i] = domain.ScoredNotice{
			Notice: ix.notices[i],
			Score:  ix.score(query, vec),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// score computes the similarity between two vectors under the index metric.
func (ix *Index) score(a, b []float32) float64 {
	switch ix.metric {
	case MetricL2:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum))
	default: // cosine
		var dot, na, nb float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
			na += float64(a[i]) * float64(a[i])
			nb += float64(b[i]) * float64(b[i])
		}
		if na == 0 || nb == 0 {
			return 0
		}
		cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
		// Negative cosine means "less than unrelated"; the score domain is [0,1].
		if cos < 0 {
			return 0
		}
		if cos > 1 {
			return 1
		}
		return cos
	}
}
