package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantRoute     string
	}{
		{
			name:          "GET request",
			method:        "GET",
			path:          "/api/v1/pantry",
			handlerStatus: http.StatusOK,
			wantRoute:     "/api/v1/pantry",
		},
		{
			name:          "route with id uses template",
			method:        "PATCH",
			path:          "/api/v1/conversations/5b0c1d1e-6a0e-4a52-9a34-8b2f0f3c3a11",
			handlerStatus: http.StatusCreated,
			wantRoute:     "/api/v1/conversations/{id}",
		},
		{
			name:          "404 request",
			method:        "GET",
			path:          "/notfound",
			handlerStatus: http.StatusNotFound,
			wantRoute:     unmatchedRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := metrics.New()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			router := mux.NewRouter()
			router.Use(Logging(zap.NewNop(), m))
			router.Handle("/api/v1/pantry", handler).Methods("GET")
			router.Handle("/api/v1/conversations/{id}", handler).Methods("PATCH")
			router.NotFoundHandler = Logging(zap.NewNop(), m)(handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			resp := w.Result()
			defer func() {
				_ = resp.Body.Close() // Ignore error in test
			}()

			if resp.StatusCode != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, resp.StatusCode)
			}
			if got := routeCount(t, m, tt.wantRoute); got != 1 {
				t.Errorf("route %q counted %v times, want 1", tt.wantRoute, got)
			}
		})
	}
}

func TestLoggingResponseWriter(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("test")) // Ignore error in test
	})

	middleware := Logging(zap.NewNop(), nil)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	resp := w.Result()
	defer func() {
		_ = resp.Body.Close() // Ignore error in test
	}()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
}

func routeCount(t *testing.T, m *metrics.Metrics, route string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != "cookwithai_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" && label.GetValue() == route {
					total += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
