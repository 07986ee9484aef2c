package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrEmptyResponse means the provider answered but with no usable text
	ErrEmptyResponse = errors.New("empty response from AI provider")
	// ErrInvalidHistory means the turn list was empty or malformed
	ErrInvalidHistory = errors.New("invalid request format. Messages array is required")
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	IsPermanent bool // true for quota or request errors, false for rate limits and outages
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && apiErr.Code != "insufficient_quota"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == "insufficient_quota" || apiErr.Type == "RESOURCE_EXHAUSTED"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota")
}

// ExtractAPIError pulls status and JSON error details out of an OpenAI SDK error string.
// It returns nil when err does not look like an HTTP error from the API.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	status := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			status = code
			break
		}
	}
	if status == 0 {
		return nil
	}

	apiErr := &APIError{
		StatusCode:  status,
		Message:     errStr,
		Type:        http.StatusText(status),
		IsPermanent: status < 500 && status != http.StatusTooManyRequests,
	}

	if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
		jsonStr := errStr[jsonStart:]
		if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
			var errorData struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(jsonStr[:jsonEnd+1]), &errorData) == nil {
				if errorData.Message != "" {
					apiErr.Message = errorData.Message
				}
				if errorData.Type != "" {
					apiErr.Type = errorData.Type
				}
				apiErr.Code = errorData.Code
				if errorData.Code == "insufficient_quota" {
					apiErr.IsPermanent = true
				}
			}
		}
	}

	return apiErr
}
