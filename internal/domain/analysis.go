package domain

import "fmt"

// Decision is the recommendation tag of an analysis. The set is closed;
// Validate rejects anything else.
type Decision string

const (
	DecisionApprove        Decision = "approve"
	DecisionRevise         Decision = "revise"
	DecisionReject         Decision = "reject"
	DecisionReviewRequired Decision = "review_required"
)

// valid reports whether the decision belongs to the closed set.
func (d Decision) valid() bool {
	switch d {
	case DecisionApprove, DecisionRevise, DecisionReject, DecisionReviewRequired:
		return true
	}
	return false
}

// SimilarNotice is a referenced notice inside an analysis, annotated with the
// confidence the engine assigned to the match.
type SimilarNotice struct {
	NoticeID      string   `json:"notice_id"`
	Score         float64  `json:"score"`
	Title         string   `json:"title,omitempty"`
	Buyer         string   `json:"buyer,omitempty"`
	CPVCodes      []string `json:"cpv_codes,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
}

// QualitativeAnalysis holds the per-dimension assessment text for the fixed
// rubric. Every field is required.
type QualitativeAnalysis struct {
	RiskManagement              string `json:"risk_management"`
	SustainabilitySocialValues  string `json:"sustainability_social_values"`
	TransparencyFairCompetition string `json:"transparency_fair_competition"`
	InnovationForwardThinking   string `json:"innovation_forward_thinking"`
}

// Recommendation is the decision plus its rationale.
type Recommendation struct {
	Decision  Decision `json:"decision"`
	Rationale string   `json:"rationale"`
}

// Analysis is the structured assessment of a draft. Instances returned to
// callers have always passed Validate.
type Analysis struct {
	SimilarNoticesRanked []SimilarNotice     `json:"similar_notices_ranked"`
	OverlapSummary       string              `json:"overlap_summary"`
	Qualitative          QualitativeAnalysis `json:"qualitative_analysis"`
	Recommendation       Recommendation      `json:"recommendation"`
	Confidence           float64             `json:"confidence"`
	Caveats              string              `json:"caveats"`
}

// Validate checks the analysis against the schema: all four rubric dimensions
// present, decision in the closed set, confidence within [0,1].
func (a Analysis) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"qualitative_analysis.risk_management", a.Qualitative.RiskManagement},
		{"qualitative_analysis.sustainability_social_values", a.Qualitative.SustainabilitySocialValues},
		{"qualitative_analysis.transparency_fair_competition", a.Qualitative.TransparencyFairCompetition},
		{"qualitative_analysis.innovation_forward_thinking", a.Qualitative.InnovationForwardThinking},
	} {
		if f.val == "" {
			return fmt.Errorf("%w: missing %s", ErrMalformedAnalysis, f.name)
		}
	}
	if !a.Recommendation.Decision.valid() {
		return fmt.Errorf("%w: unknown decision %q", ErrMalformedAnalysis, a.Recommendation.Decision)
	}
	if a.Recommendation.Rationale == "" {
		return fmt.Errorf("%w: missing recommendation.rationale", ErrMalformedAnalysis)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedAnalysis, a.Confidence)
	}
	return nil
}
