// Package store defines the persistence contracts for drafts and their
// analyses, implemented by the sqlite and redis drivers.
package store

import (
	"context"
	"time"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Drafts persists procurement drafts.
type Drafts interface {
	CreateDraft(ctx context.Context, draft domain.Draft) error
	GetDraft(ctx context.Context, id string) (domain.Draft, error)
	ListDrafts(ctx context.Context) ([]domain.Draft, error)
}

// Analyses persists analysis records, at most one per draft. Save replaces an
// existing record for the same draft (an explicit re-analyze is a new cache
// write, not an update of the old entry).
type Analyses interface {
	SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error
	GetAnalysis(ctx context.Context, draftID string) (domain.AnalysisRecord, error)
}

// Store is the combined persistence facade.
type Store interface {
	Drafts
	Analyses
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close() error
}
