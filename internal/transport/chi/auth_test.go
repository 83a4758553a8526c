package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedRouter(apiKeys []string) http.Handler {
	mw := BearerAuthMiddleware(apiKeys)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthDisabledWithoutKeys(t *testing.T) {
	h := authedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/drafts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

func TestAuthValidKey(t *testing.T) {
	h := authedRouter([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/drafts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRejections(t *testing.T) {
	h := authedRouter([]string{"secret"})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic secret"},
		{"wrong key", "Bearer nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/drafts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthExemptPaths(t *testing.T) {
	h := authedRouter([]string{"secret"})

	for _, path := range []string{"/", "/healthz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200 without credentials", path, rec.Code)
		}
	}
}

func TestAuthIgnoresEmptyConfiguredKeys(t *testing.T) {
	// A config with only empty strings (unset env vars) disables auth rather
	// than accepting the empty string as a valid key.
	h := authedRouter([]string{""})

	req := httptest.NewRequest(http.MethodGet, "/drafts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when only empty keys are configured", rec.Code)
	}
}
