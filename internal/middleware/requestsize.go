package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize applies when MAX_REQUEST_BYTES is unset or invalid (1MB)
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize caps request bodies. A declared Content-Length over the cap
// is refused up front; otherwise the body reader fails once the cap is hit and
// the JSON decoder in the handler reports 413.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
