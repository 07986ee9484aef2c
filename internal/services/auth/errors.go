package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/cook-with-ai/internal/models"
)

// Auth operations
const (
	OpSignUp  = "sign_up"
	OpSignIn  = "sign_in"
	OpSignOut = "sign_out"
)

// AuthError is a failure reported by the auth backend. Message is the backend's
// text and is shown to the user unchanged.
type AuthError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsEmailNotConfirmed reports whether sign-in was refused because the address
// has not been verified yet.
func IsEmailNotConfirmed(err error) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	return authErr.Code == "email_not_confirmed" || strings.Contains(strings.ToLower(authErr.Message), "email not confirmed")
}

func messageOf(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return err.Error()
}

// SignUpNotice is the notification shown after a sign-up attempt
func SignUpNotice(err error) models.Notification {
	if err != nil {
		return models.NewErrorNotification("Sign Up Failed", messageOf(err))
	}
	return models.NewNotification("Sign Up Successful", "Your account has been created successfully. You can now log in.")
}

// SignInNotice is the notification shown after a login attempt
func SignInNotice(err error) models.Notification {
	switch {
	case err == nil:
		return models.NewNotification("Welcome Back!", "You've successfully logged in.")
	case IsEmailNotConfirmed(err):
		return models.NewErrorNotification("Email Not Verified",
			"Your email hasn't been verified. For testing, you can disable email verification in Supabase settings.")
	default:
		return models.NewErrorNotification("Login Failed", messageOf(err))
	}
}

// SignOutNotice is the notification shown after a sign-out attempt
func SignOutNotice(err error) models.Notification {
	if err != nil {
		return models.NewErrorNotification("Sign Out Failed", messageOf(err))
	}
	return models.NewNotification("Signed Out", "You've been successfully signed out.")
}
