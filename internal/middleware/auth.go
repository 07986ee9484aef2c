package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/benvon/cook-with-ai/internal/database"
	logpkg "github.com/benvon/cook-with-ai/internal/logger"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenVerifier checks an access token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error)
}

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	return request.UserFromContext(r)
}

// Auth creates authentication middleware that validates Supabase access tokens.
// Requests without a valid token are rejected with 401.
func Auth(verifier TokenVerifier, users database.UserRepositoryInterface, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(verifier, users, logger, true)
}

// OptionalAuth attaches the user when a valid token is presented and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(verifier TokenVerifier, users database.UserRepositoryInterface, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(verifier, users, logger, false)
}

func authenticate(verifier TokenVerifier, users database.UserRepositoryInterface, logger *zap.Logger, required bool) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				if required {
					respondError(w, http.StatusUnauthorized, "Missing Authorization header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tokenString := request.BearerToken(r)
			if tokenString == "" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				logger.Info("token_verification_failed", zap.String("error", logpkg.SanitizeError(err)))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			id, err := uuid.Parse(claims.Sub)
			if err != nil {
				logger.Info("token_subject_invalid", zap.String("sub", logpkg.SanitizeString(claims.Sub, logpkg.MaxGeneralStringLength)))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user := &models.User{ID: id, Email: claims.Email}
			if claims.Name != "" {
				name := claims.Name
				user.Name = &name
			}
			if err := users.Upsert(ctx, user); err != nil {
				logger.Error("user_upsert_failed", zap.String("user_id", id.String()), zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user, tokenString)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	_ = json.NewEncoder(w).Encode(response)
}
