package ai

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Context key types for logging (to avoid collisions with string keys)
type contextKey string

const (
	userIDContextKey         contextKey = "user_id"
	conversationIDContextKey contextKey = "conversation_id"
	requestIDContextKey      contextKey = "request_id"
)

// WithUserID tags ctx with the caller for provider logs
func WithUserID(ctx context.Context, userID any) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// WithConversationID tags ctx with the conversation for provider logs
func WithConversationID(ctx context.Context, conversationID any) context.Context {
	return context.WithValue(ctx, conversationIDContextKey, conversationID)
}

// WithRequestID tags ctx with the inbound request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// MaxDebugLength bounds previews when full logging is on
	MaxDebugLength = 10000
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a safe preview of a prompt for logging
func SanitizePrompt(prompt string, fullLog bool) string {
	return sanitizeForLog(prompt, fullLog)
}

// SanitizeResponse creates a safe preview of a response for logging
func SanitizeResponse(response string, fullLog bool) string {
	return sanitizeForLog(response, fullLog)
}

func sanitizeForLog(s string, fullLog bool) string {
	if s == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	count := 0
	for _, r := range s {
		if !unicode.IsPrint(r) && r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if count == maxLen {
			builder.WriteString("...")
			break
		}
		builder.WriteRune(r)
		count++
	}
	return builder.String()
}

// ExtractRequestID extracts a request ID from context if available
func ExtractRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// ExtractUserID extracts a user ID from context if available (uuid or string)
func ExtractUserID(ctx context.Context) string {
	return stringish(ctx.Value(userIDContextKey))
}

// ExtractConversationID extracts a conversation ID from context if available
func ExtractConversationID(ctx context.Context) string {
	return stringish(ctx.Value(conversationIDContextKey))
}

func stringish(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case interface{ String() string }:
		return id.String()
	default:
		return ""
	}
}
