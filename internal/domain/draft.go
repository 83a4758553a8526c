package domain

import "time"

// Draft is a procurement draft submitted for analysis.
type Draft struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CPV         string    `json:"cpv,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueryText returns the text used to retrieve similar notices for the draft.
func (d Draft) QueryText() string {
	if d.Description == "" {
		return d.Title
	}
	return d.Title + "\n" + d.Description
}

// AnalysisEngine identifies which engine produced an analysis.
type AnalysisEngine string

const (
	// EngineGenerative is the LLM-backed analysis path.
	EngineGenerative AnalysisEngine = "generative"
	// EngineHeuristic is the deterministic keyword-scoring path, used either by
	// explicit configuration or as the fallback for a failed generative run.
	EngineHeuristic AnalysisEngine = "heuristic"
)

// AnalysisRecord is a persisted analysis keyed by draft ID. At most one record
// exists per draft; re-analysis replaces the record wholesale.
type AnalysisRecord struct {
	ID        string         `json:"id"`
	DraftID   string         `json:"draft_id"`
	Engine    AnalysisEngine `json:"engine"`
	Analysis  Analysis       `json:"analysis"`
	CreatedAt time.Time      `json:"created_at"`
}
