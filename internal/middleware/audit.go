package middleware

import (
	"net/http"

	logpkg "github.com/benvon/cook-with-ai/internal/logger"
	"github.com/benvon/cook-with-ai/internal/request"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// auditEvents maps the statuses worth a security log line to their event name
var auditEvents = map[int]string{
	http.StatusUnauthorized:          "auth_rejected",
	http.StatusForbidden:             "access_denied",
	http.StatusRequestEntityTooLarge: "oversized_request",
	http.StatusUnsupportedMediaType:  "unsupported_media_type",
}

// Audit writes a warning for rejected or suspicious requests so failed sign-ins
// and probing show up apart from normal access logs.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			event, ok := auditEvents[rec.status]
			if !ok {
				return
			}
			fields := []zap.Field{
				zap.Int("status_code", rec.status),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if user := request.UserFromContext(r); user != nil {
				fields = append(fields, zap.String("user_id", user.ID.String()))
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
			}
			logger.Warn(event, fields...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
