package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	logpkg "github.com/benvon/cook-with-ai/internal/logger"
	"github.com/benvon/cook-with-ai/internal/request"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrorResponse is the body sent when a handler panics
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	TraceID   string `json:"trace_id,omitempty"`
}

// headerTracker remembers whether the handler already started its response
type headerTracker struct {
	http.ResponseWriter
	wrote bool
}

func (t *headerTracker) WriteHeader(code int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(b)
}

// ErrorHandler recovers handler panics, logs them with the caller and trace id,
// and answers 500 unless the handler had already started writing.
// http.ErrAbortHandler is re-raised so the server aborts the connection quietly.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracker := &headerTracker{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				traceID := ""
				if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
					traceID = sc.TraceID().String()
				}
				fields := []zap.Field{
					zap.Any("error", rec),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.String("trace_id", traceID),
					zap.Stack("stack"),
				}
				if user := request.UserFromContext(r); user != nil {
					fields = append(fields, zap.String("user_id", user.ID.String()))
				}
				logger.Error("panic_recovered", fields...)

				if tracker.wrote {
					return
				}
				respondErrorJSON(w, r, traceID, logger)
			}()

			next.ServeHTTP(tracker, r)
		})
	}
}

func respondErrorJSON(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	response := ErrorResponse{
		Success:   false,
		Error:     "Internal Server Error",
		Message:   "An unexpected error occurred",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		TraceID:   traceID,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err), zap.String("path", r.URL.Path))
	}
}
