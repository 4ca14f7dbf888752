package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/config"
)

func newTestRouter() http.Handler {
	return NewRouter(RouterDeps{
		Config:   config.Config{Env: "dev"},
		Profiles: profiles.NewHandler(profiles.NewService(profiles.NewMemoryRepo())),
	})
}

func TestRouterPublicRoutes(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/api/v1/health", "/api/v1/industries", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterRequiresIdentity(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/api/v1/profile", "/api/v1/me"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouterMe(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-User-Email", "u1@example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"userId":"u1"`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"onboardingCompleted":false`) {
		t.Fatalf("expected onboarding flag for a new user, got %s", rec.Body.String())
	}
}

func TestRouterSettingsSaveUsesLLMLimit(t *testing.T) {
	cases := []struct {
		method string
		want   int
	}{
		{http.MethodPut, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			r := newTestRouter()
			var last int
			for i := 0; i < rateRules[rateGroupLLM].Burst+1; i++ {
				req := httptest.NewRequest(tc.method, "/api/v1/settings", strings.NewReader(`{"send_weekly_updates":true}`))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-User-Id", "u1")
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, req)
				last = rec.Code
			}
			if last != tc.want {
				t.Fatalf("expected %d after the llm burst, got %d", tc.want, last)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	tests := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range tests {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
