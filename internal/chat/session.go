package chat

import (
	"sync"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// Session is one signed-in user's chat state. The mutex is never held across I/O.
type Session struct {
	mu sync.Mutex

	userID         uuid.UUID
	transcript     *Transcript
	conversationID *uuid.UUID
	title          *string
	processing     bool
	initialized    bool
	notifications  []models.Notification
	createdAt      time.Time
	lastActivity   time.Time
}

// NewSession creates an empty session. A nil userID is an anonymous session.
func NewSession(userID uuid.UUID) *Session {
	now := time.Now()
	return &Session{
		userID:       userID,
		transcript:   NewTranscript(),
		createdAt:    now,
		lastActivity: now,
	}
}

// Snapshot is the client-facing view of a session.
type Snapshot struct {
	ConversationID *uuid.UUID            `json:"conversationId"`
	Title          *string               `json:"title"`
	Messages       []Message             `json:"messages"`
	IsProcessing   bool                  `json:"isProcessing"`
	Initialized    bool                  `json:"initialized"`
	Notifications  []models.Notification `json:"notifications"`
}

// UserID returns the owner, uuid.Nil when anonymous
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// Authenticated reports whether the session belongs to a signed-in user
func (s *Session) Authenticated() bool {
	return s.userID != uuid.Nil
}

// Snapshot copies the session state. With drain set, pending notifications are
// handed over and cleared so each one is shown once.
func (s *Session) Snapshot(drain bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ConversationID: copyID(s.conversationID),
		Title:          copyString(s.title),
		Messages:       s.transcript.Messages(),
		IsProcessing:   s.processing,
		Initialized:    s.initialized,
		Notifications:  append([]models.Notification{}, s.notifications...),
	}
	if drain {
		s.notifications = nil
	}
	return snap
}

// ConversationID returns the current conversation, or nil
func (s *Session) ConversationID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyID(s.conversationID)
}

// Title returns the current conversation title, or nil
func (s *Session) Title() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyString(s.title)
}

// IsProcessing reports whether a send is in flight
func (s *Session) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Notify queues a notification for the next snapshot
func (s *Session) Notify(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// idleSince reports whether the session has been untouched since cutoff and is not mid-send
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.processing && s.lastActivity.Before(cutoff)
}

// setConversation adopts id and title; callers hold the lock
func (s *Session) setConversation(id *uuid.UUID, title *string) {
	s.conversationID = copyID(id)
	s.title = copyString(title)
}

// showWelcome replaces the transcript with the greeting; callers hold the lock
func (s *Session) showWelcome(now time.Time) {
	s.transcript.Replace([]Message{WelcomeMessage(now)})
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
