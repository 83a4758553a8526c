package sparse

import (
	"errors"
	"testing"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

func corpus() []domain.Notice {
	return []domain.Notice{
		{ID: "road", Title: "Road construction", Description: "construction of a new highway bridge"},
		{ID: "school", Title: "School renovation", Description: "renovation of school buildings and classrooms"},
		{ID: "solar", Title: "Solar panels", Description: "supply and installation of solar panels for schools"},
	}
}

func TestQueryBeforeFit(t *testing.T) {
	ix := New()
	_, err := ix.Query("anything", 3)
	if !errors.Is(err, domain.ErrRetrieverUnavailable) {
		t.Errorf("expected ErrRetrieverUnavailable before Fit, got %v", err)
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	ix := New()
	err := ix.Fit(nil)
	if !errors.Is(err, domain.ErrRetrieverUnavailable) {
		t.Errorf("expected ErrRetrieverUnavailable for empty corpus, got %v", err)
	}
}

func TestQueryRanksByTermOverlap(t *testing.T) {
	ix := New()
	if err := ix.Fit(corpus()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	results, err := ix.Query("highway bridge construction", 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if results[0].Notice.ID != "road" {
		t.Errorf("expected road notice first, got %q", results[0].Notice.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}
}

func TestQueryOutOfVocabulary(t *testing.T) {
	ix := New()
	if err := ix.Fit(corpus()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	results, err := ix.Query("quantum cryptography zebra", 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected full result set, got %d", len(results))
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("out-of-vocabulary query should score 0, %q scored %f", r.Notice.ID, r.Score)
		}
	}
	// All-zero scores keep corpus order.
	want := []string{"road", "school", "solar"}
	for i, id := range want {
		if results[i].Notice.ID != id {
			t.Errorf("result[%d] = %q, want corpus order %q", i, results[i].Notice.ID, id)
		}
	}
}

func TestQueryKCapped(t *testing.T) {
	ix := New()
	if err := ix.Fit(corpus()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	results, err := ix.Query("school", 100)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected k capped at corpus size 3, got %d", len(results))
	}
}

func TestRefitReplacesCorpus(t *testing.T) {
	ix := New()
	if err := ix.Fit(corpus()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := ix.Fit([]domain.Notice{{ID: "only", Title: "Harbor dredging"}}); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("expected corpus replaced on refit, len = %d", ix.Len())
	}

	results, err := ix.Query("harbor", 5)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 || results[0].Notice.ID != "only" {
		t.Errorf("unexpected results after refit: %+v", results)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("IT-services, 2024; (Oslo)")
	want := []string{"it", "services", "2024", "oslo"}
	if len(got) != len(want) {
		t.Fatalf("tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
