// Package chat defines the conversation data model shared by the context
// engine: messages, sessions, chatbot configuration, and the structured
// validation errors raised on bad input.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SenderRole identifies who produced a message.
type SenderRole string

const (
	RoleUser   SenderRole = "user"
	RoleBot    SenderRole = "bot"
	RoleSystem SenderRole = "system"
)

// Message is a single turn fragment in a conversation. Messages are
// immutable once created; derived collections copy, never mutate.
type Message struct {
	ID        string
	Content   string
	Role      SenderRole
	Timestamp time.Time
	Visible   bool
}

// NewMessage creates a visible message with a generated ID.
func NewMessage(role SenderRole, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      role,
		Timestamp: time.Now().UTC(),
		Visible:   true,
	}
}

// IsQuestion reports whether the message contains at least one question mark.
func (m Message) IsQuestion() bool {
	return strings.Contains(m.Content, "?")
}

// VisibleMessages filters out hidden messages, preserving order.
func VisibleMessages(messages []Message) []Message {
	result := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Visible {
			result = append(result, m)
		}
	}
	return result
}

// LastUserContent returns the content of the most recent user message,
// or "" when the conversation has none.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// RecentUserContents returns up to limit most recent user message contents,
// newest first.
func RecentUserContents(messages []Message, limit int) []string {
	var result []string
	for i := len(messages) - 1; i >= 0 && len(result) < limit; i-- {
		if messages[i].Role == RoleUser {
			result = append(result, messages[i].Content)
		}
	}
	return result
}
