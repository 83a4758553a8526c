package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockDense struct {
	results []domain.ScoredNotice
	err     error
	gotK    int
}

func (m *mockDense) Search(_ []float32, k int) ([]domain.ScoredNotice, error) {
	m.gotK = k
	return m.results, m.err
}

func (m *mockDense) Len() int { return len(m.results) }

type mockSparse struct {
	results []domain.ScoredNotice
	err     error
	calls   int
}

func (m *mockSparse) Query(_ string, k int) ([]domain.ScoredNotice, error) {
	m.calls++
	return m.results, m.err
}

func hits(ids ...string) []domain.ScoredNotice {
	out := make([]domain.ScoredNotice, len(ids))
	for i, id := range ids {
		out[i] = domain.ScoredNotice{Notice: domain.Notice{ID: id}, Score: 1 - float64(i)*0.1}
	}
	return out
}

func TestDenseStrategy(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{1, 0}}
	dense := &mockDense{results: hits("a", "b")}
	sparse := &mockSparse{}

	svc, err := New(StrategyDense, embed, dense, sparse, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	results, err := svc.Retrieve(context.Background(), "road maintenance", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 || results[0].Notice.ID != "a" {
		t.Errorf("unexpected results: %+v", results)
	}
	if sparse.calls != 0 {
		t.Error("sparse index consulted on a healthy dense path")
	}
}

func TestDenseFallsBackToSparse(t *testing.T) {
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	dense := &mockDense{}
	sparse := &mockSparse{results: hits("s")}

	svc, err := New(StrategyDense, embed, dense, sparse, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	results, err := svc.Retrieve(context.Background(), "road maintenance", 5)
	if err != nil {
		t.Fatalf("Retrieve should have fallen back, got error: %v", err)
	}
	if len(results) != 1 || results[0].Notice.ID != "s" {
		t.Errorf("expected sparse fallback results, got %+v", results)
	}
	if sparse.calls != 1 {
		t.Errorf("expected 1 sparse query, got %d", sparse.calls)
	}
}

func TestDenseWithoutFallbackSurfacesUnavailable(t *testing.T) {
	embed := &mockEmbedder{err: errors.New("connection refused")}
	svc, err := New(StrategyDense, embed, &mockDense{}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = svc.Retrieve(context.Background(), "anything", 3)
	if !errors.Is(err, domain.ErrRetrieverUnavailable) {
		t.Errorf("expected ErrRetrieverUnavailable, got %v", err)
	}
}

func TestSparseStrategy(t *testing.T) {
	sparse := &mockSparse{results: hits("x", "y")}
	svc, err := New(StrategySparse, nil, nil, sparse, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	results, err := svc.Retrieve(context.Background(), "school renovation", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestSparseErrorPropagates(t *testing.T) {
	sparse := &mockSparse{err: domain.ErrRetrieverUnavailable}
	svc, _ := New(StrategySparse, nil, nil, sparse, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), "q", 1)
	if !errors.Is(err, domain.ErrRetrieverUnavailable) {
		t.Errorf("expected ErrRetrieverUnavailable, got %v", err)
	}
}

func TestDefaultTopK(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{1}}
	dense := &mockDense{}
	svc, _ := New(StrategyDense, embed, dense, nil, zap.NewNop())

	if _, err := svc.Retrieve(context.Background(), "q", 0); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if dense.gotK != domain.DefaultTopK {
		t.Errorf("k = %d, want default %d", dense.gotK, domain.DefaultTopK)
	}
}

func TestNewValidatesWiring(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		embed    Embedder
		dense    DenseIndex
		sparse   SparseIndex
	}{
		{"dense without embedder", StrategyDense, nil, &mockDense{}, nil},
		{"dense without index", StrategyDense, &mockEmbedder{}, nil, nil},
		{"sparse without index", StrategySparse, nil, nil, nil},
		{"unknown strategy", Strategy("hybrid"), &mockEmbedder{}, &mockDense{}, &mockSparse{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.strategy, tc.embed, tc.dense, tc.sparse, zap.NewNop()); err == nil {
				t.Error("expected a wiring error")
			}
		})
	}
}
