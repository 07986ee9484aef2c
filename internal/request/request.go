// Package request carries per-request identity between middleware and handlers.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/cook-with-ai/internal/models"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "access_token"
)

// UserContextKey returns the context key used for the user. Exposed for tests that inject non-user values.
func UserContextKey() contextKey { return userContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUser returns a context carrying the signed-in user and the token they presented.
func WithUser(ctx context.Context, user *models.User, accessToken string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	if accessToken != "" {
		ctx = context.WithValue(ctx, tokenContextKey, accessToken)
	}
	return ctx
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

// AccessTokenFromContext returns the verified access token, used to revoke the session on logout.
func AccessTokenFromContext(r *http.Request) string {
	t, _ := r.Context().Value(tokenContextKey).(string)
	return t
}
