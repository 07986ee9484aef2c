package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/cook-with-ai/internal/chat"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/request"
	"github.com/benvon/cook-with-ai/internal/services/auth"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// AuthClient is the slice of the Supabase auth API the handler needs
type AuthClient interface {
	SignUp(ctx context.Context, email, password string) (*auth.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*oauth2.Token, error)
	SignOut(ctx context.Context, accessToken string) error
}

var _ AuthClient = (*auth.Client)(nil)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	client   AuthClient
	sessions *chat.SessionStore
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(client AuthClient, sessions *chat.SessionStore, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{client: client, sessions: sessions, logger: logger}
}

// RegisterRoutes registers the public auth routes.
// The router should already have the /api/v1/auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.SignUp).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers routes that need a verified token
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// CredentialsRequest is an email and password
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=256"`
}

// SessionResponse is the outcome of sign-up or login
type SessionResponse struct {
	AccessToken  string              `json:"access_token,omitempty"`
	RefreshToken string              `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
	User         *auth.User          `json:"user,omitempty"`
	Notification models.Notification `json:"notification"`
}

func sessionResponse(tok *oauth2.Token, user *auth.User, notice models.Notification) SessionResponse {
	resp := SessionResponse{User: user, Notification: notice}
	if tok != nil {
		resp.AccessToken = tok.AccessToken
		resp.RefreshToken = tok.RefreshToken
		if !tok.Expiry.IsZero() {
			expiry := tok.Expiry.UTC()
			resp.ExpiresAt = &expiry
		}
		if resp.User == nil {
			resp.User = auth.SessionUser(tok)
		}
	}
	return resp
}

// respondAuthError reports a failed auth call with the backend's own message
func respondAuthError(w http.ResponseWriter, notice models.Notification, err error) {
	status := http.StatusBadRequest
	var authErr *auth.AuthError
	if errors.As(err, &authErr) && authErr.StatusCode >= 500 {
		status = http.StatusBadGateway
	}
	respondJSONError(w, status, notice.Title, notice.Description)
}

// SignUp registers a new account
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.client.SignUp(r.Context(), req.Email, req.Password)
	notice := auth.SignUpNotice(err)
	if err != nil {
		h.logger.Info("sign_up_failed", zap.Error(err))
		respondAuthError(w, notice, err)
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse(result.Session, result.User, notice))
}

// Login exchanges credentials for a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tok, err := h.client.SignIn(r.Context(), req.Email, req.Password)
	notice := auth.SignInNotice(err)
	if err != nil {
		h.logger.Info("sign_in_failed", zap.Bool("email_not_confirmed", auth.IsEmailNotConfirmed(err)), zap.Error(err))
		respondAuthError(w, notice, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(tok, nil, notice))
}

// Logout revokes the session and drops the user's chat state
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	err := h.client.SignOut(r.Context(), request.AccessTokenFromContext(r))
	notice := auth.SignOutNotice(err)
	if err != nil {
		h.logger.Warn("sign_out_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondAuthError(w, notice, err)
		return
	}

	h.sessions.Close(user.ID)
	respondJSON(w, http.StatusOK, map[string]any{"notification": notice})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	respondJSON(w, http.StatusOK, user)
}
