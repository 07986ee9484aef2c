package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{name: "GET passes", method: "GET", wantStatus: http.StatusOK},
		{name: "bodiless POST passes", method: "POST", wantStatus: http.StatusOK},
		{name: "JSON POST passes", method: "POST", body: `{}`, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "media type is case-insensitive", method: "PATCH", body: `{}`, contentType: "Application/JSON", wantStatus: http.StatusOK},
		{name: "malformed header", method: "POST", body: `{}`, contentType: "application/json; =", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing header", method: "PATCH", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "form body rejected", method: "PUT", body: "a=b", contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/v1/pantry", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			ContentType(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantEvent string
	}{
		{status: http.StatusOK},
		{status: http.StatusNotFound},
		{status: http.StatusUnauthorized, wantEvent: "auth_rejected"},
		{status: http.StatusForbidden, wantEvent: "access_denied"},
		{status: http.StatusRequestEntityTooLarge, wantEvent: "oversized_request"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.WarnLevel)
			h := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/pantry", nil))

			entries := logs.All()
			if tt.wantEvent == "" {
				if len(entries) != 0 {
					t.Errorf("Expected no audit entries, got %v", entries)
				}
				return
			}
			if len(entries) != 1 || entries[0].Message != tt.wantEvent {
				t.Fatalf("entries = %v, want one %q", entries, tt.wantEvent)
			}
			if got := entries[0].ContextMap()["path"]; got != "/api/v1/pantry" {
				t.Errorf("path = %v", got)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/api/v1/chat/messages", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	MaxRequestSize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for an oversized body")
	})).ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	SecurityHeaders(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	// httptest requests are plain HTTP, so HSTS stays off
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want empty over HTTP", got)
	}
}

type stubCorsRepo struct {
	cfg *models.CorsConfig
	err error
}

func (s *stubCorsRepo) Get(ctx context.Context) (*models.CorsConfig, error) { return s.cfg, s.err }

func (s *stubCorsRepo) Set(ctx context.Context, c *models.CorsConfig) error {
	s.cfg = c
	return nil
}

func TestCORSReloader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		repo        *stubCorsRepo
		origin      string
		wantAllowed bool
	}{
		{
			name:        "stored origins",
			repo:        &stubCorsRepo{cfg: &models.CorsConfig{AllowedOrigins: "https://cook.example.com", AllowCredentials: true, MaxAge: 600}},
			origin:      "https://cook.example.com",
			wantAllowed: true,
		},
		{
			name:        "stored origins reject others",
			repo:        &stubCorsRepo{cfg: &models.CorsConfig{AllowedOrigins: "https://cook.example.com"}},
			origin:      "https://evil.example.com",
			wantAllowed: false,
		},
		{
			name:        "falls back to frontend url",
			repo:        &stubCorsRepo{err: errors.New("no table")},
			origin:      "http://localhost:5173",
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reloader := NewCORSReloader(tt.repo, "http://localhost:5173", zap.NewNop(), 0)
			h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/v1/conversations", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			allowed := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if allowed != tt.wantAllowed {
				t.Errorf("allowed = %v, want %v", allowed, tt.wantAllowed)
			}
		})
	}
}

func TestCORSReloader_PicksUpChanges(t *testing.T) {
	t.Parallel()

	repo := &stubCorsRepo{}
	reloader := NewCORSReloader(repo, "", zap.NewNop(), 0)
	h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	allowed := func(origin string) bool {
		req := httptest.NewRequest("GET", "/api/v1/pantry", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Header().Get("Access-Control-Allow-Origin") == origin
	}

	if !allowed("http://localhost:3000") {
		t.Fatal("Expected the localhost default before any policy is stored")
	}

	_ = repo.Set(context.Background(), &models.CorsConfig{AllowedOrigins: "https://meals.example.com/"})
	reloader.Reload(context.Background())

	if !allowed("https://meals.example.com") {
		t.Error("Expected the stored origin after reload")
	}
	if allowed("http://localhost:3000") {
		t.Error("Expected the default origin to be dropped after reload")
	}
}

func TestSecurityHeaders_NoStoreOnAPI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/v1/auth/login", want: "no-store"},
		{path: "/healthz", want: ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		SecurityHeaders(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
			ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		if got := w.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("%s: Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusOK)
	})

	t.Run("deadline returns 503 JSON", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		Timeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pantry", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"Request Timeout"`) {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("exempt prefix keeps only the deadline", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		Timeout(20*time.Millisecond, "/metrics")(slow).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}
