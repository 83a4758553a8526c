package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// fakeBackend replays scripted responses in order. A nil entry means the call
// fails with ErrBackendUnavailable.
type fakeBackend struct {
	responses []*string
	prompts   []string
	calls     int
}

func (f *fakeBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.calls >= len(f.responses) {
		return "", errors.New("unscripted call")
	}
	resp := f.responses[f.calls]
	f.calls++
	if resp == nil {
		return "", domain.ErrBackendUnavailable
	}
	return *resp, nil
}

func scripted(responses ...*string) *fakeBackend {
	return &fakeBackend{responses: responses}
}

func ok(s string) *string { return &s }

func testDraft() domain.Draft {
	return domain.Draft{ID: "d-1", Title: "Road maintenance", Description: "resurfacing of municipal roads"}
}

func newService(t *testing.T, engine domain.AnalysisEngine, backend Backend) *Service {
	t.Helper()
	svc, err := New(engine, backend, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc
}

func TestGenerativeSuccess(t *testing.T) {
	backend := scripted(ok(validPayload))
	svc := newService(t, domain.EngineGenerative, backend)

	a, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineGenerative {
		t.Errorf("engine = %q, want generative", engine)
	}
	if a.Recommendation.Decision != domain.DecisionApprove {
		t.Errorf("decision = %q, want approve", a.Recommendation.Decision)
	}
	if backend.calls != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", backend.calls)
	}
}

func TestGenerativeRetryRecovers(t *testing.T) {
	backend := scripted(ok("not json at all"), ok(validPayload))
	svc := newService(t, domain.EngineGenerative, backend)

	_, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineGenerative {
		t.Errorf("engine = %q, want generative after successful retry", engine)
	}
	if backend.calls != 2 {
		t.Fatalf("expected 2 backend calls, got %d", backend.calls)
	}
	if !strings.Contains(backend.prompts[1], "CRITICAL") {
		t.Error("retry prompt missing the strict JSON-only directive")
	}
	if strings.Contains(backend.prompts[0], "CRITICAL") {
		t.Error("initial prompt should not carry the strict directive")
	}
}

func TestGenerativeDoubleMalformedFallsBack(t *testing.T) {
	backend := scripted(ok("garbage"), ok("more garbage"))
	svc := newService(t, domain.EngineGenerative, backend)

	a, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineHeuristic {
		t.Errorf("engine = %q, want heuristic after two malformed responses", engine)
	}
	if backend.calls != 2 {
		t.Errorf("expected exactly 2 backend calls (one retry), got %d", backend.calls)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("fallback analysis is invalid: %v", err)
	}
	if !strings.Contains(a.Caveats, "malformed") {
		t.Errorf("caveat should mention the malformed output, got %q", a.Caveats)
	}
}

func TestGenerativeBackendUnavailableFallsBack(t *testing.T) {
	backend := scripted(nil)
	svc := newService(t, domain.EngineGenerative, backend)

	a, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineHeuristic {
		t.Errorf("engine = %q, want heuristic when the backend is down", engine)
	}
	if backend.calls != 1 {
		t.Errorf("unavailable backend should not be retried, got %d calls", backend.calls)
	}
	if !strings.Contains(a.Caveats, "unavailable") {
		t.Errorf("caveat should mention backend unavailability, got %q", a.Caveats)
	}
}

func TestGenerativeUnavailableOnRetryFallsBack(t *testing.T) {
	backend := scripted(ok("garbage"), nil)
	svc := newService(t, domain.EngineGenerative, backend)

	_, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineHeuristic {
		t.Errorf("engine = %q, want heuristic", engine)
	}
}

func TestHeuristicEngineNeverCallsBackend(t *testing.T) {
	backend := scripted()
	svc := newService(t, domain.EngineHeuristic, backend)

	a, engine, err := svc.Analyze(context.Background(), testDraft(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if engine != domain.EngineHeuristic {
		t.Errorf("engine = %q, want heuristic", engine)
	}
	if backend.calls != 0 {
		t.Errorf("heuristic engine made %d backend calls", backend.calls)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("heuristic analysis is invalid: %v", err)
	}
}

func TestGenerativeRequiresBackend(t *testing.T) {
	if _, err := New(domain.EngineGenerative, nil, zap.NewNop()); err == nil {
		t.Error("expected New to reject a generative engine without a backend")
	}
}

func TestCallerCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := scripted(nil)
	svc := newService(t, domain.EngineGenerative, backend)

	_, _, err := svc.Analyze(ctx, testDraft(), nil)
	if err == nil {
		t.Fatal("expected an error when the caller context is canceled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
