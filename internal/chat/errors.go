package chat

import (
	"errors"
	"fmt"
)

// ErrProcessing is returned when a send arrives while another is still running
// or inside the post-send debounce window. Session state is left untouched.
var ErrProcessing = errors.New("a message is already being processed")

// Notification texts shown for chat failures
const (
	SendFailedText = "Failed to send message. Please try again."
	LoadFailedText = "Failed to load conversation. Please try again."
	SaveFailedText = "Some messages could not be saved. They may be missing after a reload."
	MealFailedText = "Failed to plan meal. Please try again."
)

// ConversationError means no conversation could be created or loaded
type ConversationError struct {
	Op  string
	Err error
}

func (e *ConversationError) Error() string {
	return fmt.Sprintf("conversation %s failed: %v", e.Op, e.Err)
}

func (e *ConversationError) Unwrap() error { return e.Err }

// ResponseError means the assistant call failed or produced no text
type ResponseError struct {
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("assistant response failed: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// PersistenceError is a store write that failed after the transcript already
// changed. It is reported but never rolls anything back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
