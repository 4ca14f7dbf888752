package onboarding

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/middleware"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(nil, "dev"))
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func multipartRequest(t *testing.T, fields map[string][]string, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="cv"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/onboarding", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-User-Email", "u1@example.com")
	return req
}

var studentFields = map[string][]string{
	"user_type":             {"student"},
	"networking_goal":       {"exploring"},
	"target_industries":     {"Finance", "Consulting"},
	"send_weekly_updates":   {"true"},
	"connect_with_alumni":   {"true"},
	"connect_with_students": {"false"},
}

func TestHandlerCompletesOnboarding(t *testing.T) {
	fx := newFixture(t)
	rec := httptest.NewRecorder()
	newRouter(fx.svc).ServeHTTP(rec, multipartRequest(t, studentFields, "cv.pdf", "application/pdf", pdfBytes))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"onboarding_completed":true`) || !strings.Contains(body, `"email":"u1@example.com"`) {
		t.Fatalf("unexpected body %s", body)
	}
	if len(fx.queue.sent) != 1 {
		t.Fatalf("expected extraction job")
	}
}

func TestHandlerRejectsBadCV(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
	}{
		{"text file", "cv.txt", "text/plain", []byte("hello")},
		{"renamed docx", "cv.pdf", "application/pdf", []byte("PK\x03\x04")},
		{"oversized", "cv.pdf", "application/pdf", append(append([]byte{}, pdfBytes...), make([]byte, 2*MaxCVBytes)...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t)
			rec := httptest.NewRecorder()
			newRouter(fx.svc).ServeHTTP(rec, multipartRequest(t, studentFields, tc.fileName, tc.contentType, tc.data))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"code":"VALIDATION_ERROR"`) {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
			if len(fx.store.puts) != 0 || len(fx.queue.sent) != 0 {
				t.Fatalf("no store or queue call expected")
			}
		})
	}
}

func TestHandlerStatus(t *testing.T) {
	fx := newFixture(t)
	r := newRouter(fx.svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/status", nil)
	req.Header.Set("X-User-Id", "u1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"completed":false`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}

	r.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, studentFields, "cv.pdf", "application/pdf", pdfBytes))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"completed":true`) {
		t.Fatalf("unexpected %s", rec.Body.String())
	}
}

func TestHandlerPresign(t *testing.T) {
	fx := newFixture(t)
	fx.svc.Presigner = &recordingPresigner{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/onboarding/cv-url", strings.NewReader(`{"fileName":"cv.pdf","contentType":"application/pdf","sizeBytes":1024}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	rec := httptest.NewRecorder()
	newRouter(fx.svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"key":"u1/1700000000000.pdf"`) || !strings.Contains(rec.Body.String(), `"expiresInSeconds":900`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
