package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout applies when REQUEST_TIMEOUT is unset or invalid
const DefaultRequestTimeout = 30 * time.Second

const timeoutBody = `{"success":false,"error":"Request Timeout"}`

// Timeout bounds request handling. Requests whose path starts with one of the
// exempt prefixes only get the context deadline and are not cut off by
// http.TimeoutHandler; /metrics scrapes and other streaming reads go there.
func Timeout(timeout time.Duration, exempt ...string) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			for _, prefix := range exempt {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Kept when the deadline fires; handlers that finish overwrite it with their own.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
