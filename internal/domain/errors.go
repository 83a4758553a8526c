package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDraftNotFound signals a missing draft.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrAnalysisNotFound signals that a draft has no stored analysis yet.
	ErrAnalysisNotFound = errors.New("analysis not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")

	// ErrRetrieverUnavailable signals that a retrieval capability is not ready
	// (sparse index not fitted, embedding backend unreachable). Callers switch
	// strategy or surface the condition, never return a silent empty result set.
	ErrRetrieverUnavailable = errors.New("retriever unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrIndexCorrupted signals an unreadable or inconsistent index snapshot.
	// Fatal for the index instance; never silently replaced by an empty index.
	ErrIndexCorrupted = errors.New("index snapshot corrupted")

	// ErrMalformedAnalysis signals a generative response that failed schema
	// validation. Recovered locally via the strict retry and fallback; callers
	// only ever see it as a caveat.
	ErrMalformedAnalysis = errors.New("malformed analysis output")
	// ErrBackendUnavailable signals a transport failure talking to the
	// generative backend (timeout, connection refused).
	ErrBackendUnavailable = errors.New("generative backend unavailable")
)
