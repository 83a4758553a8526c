package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

func TestHeuristicDeterministic(t *testing.T) {
	draft := domain.Draft{ID: "d-1", Title: "New smart building", Description: "innovative and sustainable construction"}
	neighbors := []domain.ScoredNotice{
		{Notice: domain.Notice{ID: "n-1", Title: "Office building"}, Score: 0.8},
	}

	a := heuristicAnalysis(draft, neighbors, "")
	b := heuristicAnalysis(draft, neighbors, "")
	if !reflect.DeepEqual(a, b) {
		t.Error("heuristic analysis is not deterministic for identical input")
	}
}

func TestHeuristicAlwaysValid(t *testing.T) {
	drafts := []domain.Draft{
		{ID: "empty"},
		{ID: "plain", Title: "Catering services", Description: "daily lunch delivery"},
		{ID: "loaded", Title: "Experimental AI prototype", Description: "untested new sustainable green renewable eco environment smart modern advanced innovative"},
	}
	for _, d := range drafts {
		a := heuristicAnalysis(d, nil, "")
		if err := a.Validate(); err != nil {
			t.Errorf("draft %q: heuristic produced invalid analysis: %v", d.ID, err)
		}
		if a.Caveats == "" {
			t.Errorf("draft %q: heuristic analysis has no caveat", d.ID)
		}
		if a.Confidence != fallbackConfidence {
			t.Errorf("draft %q: confidence = %f, want %f", d.ID, a.Confidence, fallbackConfidence)
		}
	}
}

func TestHeuristicSustainabilityScore(t *testing.T) {
	// Three distinct sustainability keywords: 0.3 + 3*0.2 = 0.9, a high score.
	draft := domain.Draft{Title: "Green energy", Description: "sustainable renewable power plant"}
	a := heuristicAnalysis(draft, nil, "")

	if !strings.Contains(a.Qualitative.SustainabilitySocialValues, "high") {
		t.Errorf("expected a high sustainability label, got %q", a.Qualitative.SustainabilitySocialValues)
	}
	if !strings.Contains(a.Qualitative.SustainabilitySocialValues, "0.90") {
		t.Errorf("expected score 0.90 in text, got %q", a.Qualitative.SustainabilitySocialValues)
	}
}

func TestHeuristicCompetitionScore(t *testing.T) {
	// No neighbors: 0.6 + 0*0.03 = 0.6, a medium score.
	a := heuristicAnalysis(domain.Draft{Title: "Snow removal"}, nil, "")

	if !strings.Contains(a.Qualitative.TransparencyFairCompetition, "medium") {
		t.Errorf("expected a medium competition label, got %q", a.Qualitative.TransparencyFairCompetition)
	}
	if !strings.Contains(a.Qualitative.TransparencyFairCompetition, "0.60") {
		t.Errorf("expected score 0.60 in text, got %q", a.Qualitative.TransparencyFairCompetition)
	}
}

func TestHeuristicScoresClamped(t *testing.T) {
	// Enough neighbors to push competition past 1 without clamping.
	neighbors := make([]domain.ScoredNotice, 20)
	for i := range neighbors {
		neighbors[i] = domain.ScoredNotice{Notice: domain.Notice{ID: string(rune('a' + i))}}
	}
	a := heuristicAnalysis(domain.Draft{Title: "Framework agreement"}, neighbors, "")
	if !strings.Contains(a.Qualitative.TransparencyFairCompetition, "1.00") {
		t.Errorf("expected competition clamped to 1.00, got %q", a.Qualitative.TransparencyFairCompetition)
	}
}

func TestHeuristicDecisionRules(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.Draft
		want  domain.Decision
	}{
		{
			// Three risk keywords: 0.4 + 3*0.15 = 0.85 >= 0.75.
			name:  "high risk forces review",
			draft: domain.Draft{Title: "New experimental prototype platform", Description: "sustainable"},
			want:  domain.DecisionReviewRequired,
		},
		{
			// No sustainability keywords: 0.3 < 0.5.
			name:  "low sustainability forces revision",
			draft: domain.Draft{Title: "Office furniture"},
			want:  domain.DecisionRevise,
		},
		{
			// One sustainability keyword lifts the score to 0.5; risk stays at its base.
			name:  "balanced draft approved",
			draft: domain.Draft{Title: "Sustainable office furniture"},
			want:  domain.DecisionApprove,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := heuristicAnalysis(tc.draft, nil, "")
			if a.Recommendation.Decision != tc.want {
				t.Errorf("decision = %q, want %q", a.Recommendation.Decision, tc.want)
			}
		})
	}
}

func TestHeuristicRanksNeighbors(t *testing.T) {
	neighbors := []domain.ScoredNotice{
		{Notice: domain.Notice{ID: "n-1", Title: "First", Buyer: "Oslo", CPVCodes: []string{"45000000"}}, Score: 0.9},
		{Notice: domain.Notice{ID: "n-2", Title: "Second"}, Score: 0.7},
	}
	a := heuristicAnalysis(domain.Draft{Title: "Roadworks"}, neighbors, "")

	if len(a.SimilarNoticesRanked) != 2 {
		t.Fatalf("expected 2 ranked notices, got %d", len(a.SimilarNoticesRanked))
	}
	first := a.SimilarNoticesRanked[0]
	if first.NoticeID != "n-1" || first.Score != 0.9 || first.Buyer != "Oslo" {
		t.Errorf("unexpected first ranked notice: %+v", first)
	}
}

func TestHeuristicCustomCaveat(t *testing.T) {
	a := heuristicAnalysis(domain.Draft{Title: "x"}, nil, "backend failed twice")
	if a.Caveats != "backend failed twice" {
		t.Errorf("caveat not carried through: %q", a.Caveats)
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.75, "High"},
		{0.9, "High"},
		{0.5, "Medium"},
		{0.74, "Medium"},
		{0.49, "Low"},
		{0, "Low"},
	}
	for _, tc := range tests {
		if got := level(tc.score); got != tc.want {
			t.Errorf("level(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
