package matches

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/middleware"
)

func newRouter(e *env, n Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(e.svc, n)
	fn := r.Group("/functions/v1")
	fn.Use(middleware.Auth(nil, "dev"))
	h.RegisterFunctionRoutes(fn)
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(nil, "dev"))
	h.RegisterRoutes(api)
	return r
}

func do(r *gin.Engine, method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", caller)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env
}

func TestGenerateFunctionReturnsMatches(t *testing.T) {
	e := newEnv(t, twoRecs)
	rec := do(newRouter(e, nil), http.MethodPost, "/functions/v1/generate-recommendations", "me", `{"userId":"me"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	var ms []MatchWithProfile
	if err := json.Unmarshal(env.Data, &ms); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(ms) != 2 || ms[0].MatchedProfile.FirstName != "Grace" {
		t.Fatalf("unexpected data %s", env.Data)
	}
	if !strings.Contains(string(env.Data), `"matched_profile"`) {
		t.Fatalf("expected matched_profile key")
	}
}

func TestGenerateFunctionNoMatchesIsEmptyList(t *testing.T) {
	e := newEnv(t, twoRecs)
	rec := do(newRouter(e, nil), http.MethodPost, "/functions/v1/generate-recommendations", "me", `{"userId":"me","criteria":{"programs":["MFA"]}}`)
	env := decode(t, rec)
	if !env.Success || env.Message != MessageNoMatches || string(env.Data) != "[]" {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestGenerateFunctionErrorsAre400(t *testing.T) {
	e := newEnv(t, twoRecs)
	r := newRouter(e, nil)

	rec := do(r, http.MethodPost, "/functions/v1/generate-recommendations", "me", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	e.llm.err = errors.New("upstream down")
	rec = do(r, http.MethodPost, "/functions/v1/generate-recommendations", "me", `{"userId":"me"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec).Code != "UPSTREAM_ERROR" {
		t.Fatalf("expected 400 upstream, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateFunctionForbidsOtherUser(t *testing.T) {
	e := newEnv(t, twoRecs)
	rec := do(newRouter(e, nil), http.MethodPost, "/functions/v1/generate-recommendations", "alum-1", `{"userId":"me"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRefreshNotifies(t *testing.T) {
	e := newEnv(t, twoRecs)
	n := &recordingNotifier{}
	rec := do(newRouter(e, n), http.MethodPost, "/api/v1/matches/refresh", "me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out refreshResponse
	if err := json.Unmarshal(decode(t, rec).Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.EmailSent || len(out.Matches) != 2 || n.count != 2 {
		t.Fatalf("unexpected refresh %+v notifier=%+v", out, n)
	}
}

func TestListAndUpdateStatus(t *testing.T) {
	e := newEnv(t, twoRecs)
	e.repo.Put(Match{ID: "m1", UserID: "me", MatchedUserID: "alum-1", Score: 0.7, Status: StatusPending})
	r := newRouter(e, nil)

	rec := do(r, http.MethodGet, "/api/v1/matches", "me", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"m1"`) {
		t.Fatalf("unexpected list %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPatch, "/api/v1/matches/m1", "me", `{"status":"accepted"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodPatch, "/api/v1/matches/m1", "alum-1", `{"status":"accepted"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign match, got %d", rec.Code)
	}
	rec = do(r, http.MethodPatch, "/api/v1/matches/m1", "me", `{"status":"expired"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
