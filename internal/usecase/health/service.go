// Package health aggregates component health checks for the readiness
// endpoint.
package health

import "context"

// Status is the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure (the service still answers, possibly
	// via fallback paths).
	Degraded Status = "degraded"
)

// Pinger checks storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker verifies embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexSizer reports how many notices the active index holds.
type IndexSizer interface {
	Len() int
}

// Report aggregates check results.
type Report struct {
	Status       Status            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexedCount int               `json:"indexed_count"`
}

// Service coordinates health checks.
type Service struct {
	store     Pinger
	embedding EmbeddingChecker
	index     IndexSizer
}

// New creates a health service. embedding and index can be nil.
func New(store Pinger, embedding EmbeddingChecker, index IndexSizer) *Service {
	return &Service{store: store, embedding: embedding, index: index}
}

// Check runs all component checks. Failures degrade the status but never
// error: the report itself is the answer.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]string)

	record := func(name string, err error) {
		if err != nil {
			checks[name] = "error"
		} else {
			checks[name] = "ok"
		}
	}

	record("storage", s.store.Ping(ctx))
	if s.embedding != nil {
		record("embedding", s.embedding.HealthCheck(ctx))
	}

	report := Report{Status: Healthy, Checks: checks}
	if s.index != nil {
		report.IndexedCount = s.index.Len()
	}
	for _, v := range checks {
		if v == "error" {
			report.Status = Degraded
			break
		}
	}
	return report
}
