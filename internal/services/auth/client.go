package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// User is the account record GoTrue returns alongside a session
type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	ConfirmedAt  *time.Time     `json:"confirmed_at,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// SignUpResult carries the new user and, when email confirmation is disabled,
// an immediately usable session.
type SignUpResult struct {
	User    *User
	Session *oauth2.Token
}

// Client talks to the Supabase auth (GoTrue) REST API
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a client for the project at supabaseURL
func NewClient(supabaseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    supabaseURL + "/auth/v1",
		anonKey:    anonKey,
		httpClient: httpClient,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// token converts a GoTrue session into an oauth2 token; the user rides along as extra data
func (s *sessionResponse) token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
	}
	if s.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{"user": s.User})
}

// SessionUser returns the user stored on a token produced by this client
func SessionUser(tok *oauth2.Token) *User {
	if tok == nil {
		return nil
	}
	u, _ := tok.Extra("user").(*User)
	return u
}

// SignUp registers a new email/password account
func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, OpSignUp, http.MethodPost, "/signup", "", credentials{email, password}, &raw); err != nil {
		return nil, err
	}

	// With confirmation enabled the body is the user; otherwise it is a session.
	var sess sessionResponse
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, &AuthError{Op: OpSignUp, Message: "unexpected response from auth service", Err: err}
	}
	if sess.AccessToken != "" {
		return &SignUpResult{User: sess.User, Session: sess.token()}, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &AuthError{Op: OpSignUp, Message: "unexpected response from auth service", Err: err}
	}
	return &SignUpResult{User: &user}, nil
}

// SignIn exchanges an email and password for a session
func (c *Client) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var sess sessionResponse
	if err := c.do(ctx, OpSignIn, http.MethodPost, "/token?grant_type=password", "", credentials{email, password}, &sess); err != nil {
		return nil, err
	}
	tok := sess.token()
	if tok == nil {
		return nil, &AuthError{Op: OpSignIn, Message: "auth service returned no session"}
	}
	return tok, nil
}

// SignOut revokes the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, OpSignOut, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &AuthError{Op: op, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &AuthError{Op: op, Message: "failed to create request", Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Op: op, Message: "auth service unavailable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &AuthError{Op: op, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode >= 300 {
		return decodeError(op, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &AuthError{Op: op, StatusCode: resp.StatusCode, Message: "unexpected response from auth service", Err: err}
	}
	return nil
}

// decodeError understands both the legacy OAuth-style body and the newer
// {code, error_code, msg} shape.
func decodeError(op string, status int, data []byte) error {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorCode        string `json:"error_code"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(data, &body)

	authErr := &AuthError{Op: op, StatusCode: status, Code: body.ErrorCode}
	for _, m := range []string{body.Msg, body.ErrorDescription, body.Message, body.Error} {
		if m != "" {
			authErr.Message = m
			break
		}
	}
	if authErr.Message == "" {
		authErr.Message = fmt.Sprintf("auth service returned status %d", status)
	}
	return authErr
}
