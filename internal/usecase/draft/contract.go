package draft

import (
	"context"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Store is the persistence contract: drafts plus at-most-one analysis per draft.
type Store interface {
	CreateDraft(ctx context.Context, draft domain.Draft) error
	GetDraft(ctx context.Context, id string) (domain.Draft, error)
	ListDrafts(ctx context.Context) ([]domain.Draft, error)
	SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error
	GetAnalysis(ctx context.Context, draftID string) (domain.AnalysisRecord, error)
}

// Analyzer generates a structured analysis from a draft and its neighbors,
// reporting which engine actually produced the result.
type Analyzer interface {
	Analyze(ctx context.Context, draft domain.Draft, neighbors []domain.ScoredNotice) (domain.Analysis, domain.AnalysisEngine, error)
}
