package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

type stubSizer struct{ n int }

func (s stubSizer) Len() int { return s.n }

func TestCheckHealthy(t *testing.T) {
	svc := New(stubPinger{}, stubChecker{}, stubSizer{n: 42})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want ok", report.Status)
	}
	if report.Checks["storage"] != "ok" || report.Checks["embedding"] != "ok" {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
	if report.IndexedCount != 42 {
		t.Errorf("indexed count = %d, want 42", report.IndexedCount)
	}
}

func TestCheckDegradedOnStorageFailure(t *testing.T) {
	svc := New(stubPinger{err: errors.New("down")}, nil, nil)
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.Checks["storage"] != "error" {
		t.Errorf("storage check = %q, want error", report.Checks["storage"])
	}
}

func TestCheckDegradedOnEmbeddingFailure(t *testing.T) {
	svc := New(stubPinger{}, stubChecker{err: errors.New("offline")}, nil)
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want degraded", report.Status)
	}
}

func TestCheckSkipsOptionalComponents(t *testing.T) {
	svc := New(stubPinger{}, nil, nil)
	report := svc.Check(context.Background())

	if _, ok := report.Checks["embedding"]; ok {
		t.Error("embedding check reported without a checker")
	}
	if report.IndexedCount != 0 {
		t.Errorf("indexed count = %d without a sizer", report.IndexedCount)
	}
}
