// Package storage provides conversation persistence.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Schema and serialization details encapsulated per implementation

package storage

import (
	"context"
	"time"

	"github.com/richinex/inquest/model"
)

// MaxTitleLen caps stored conversation titles.
const MaxTitleLen = 64

// DefaultTitle is given to a conversation before its first prompt names it.
const DefaultTitle = "New chat"

// Conversation is one saved investigation thread.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one saved turn: the text shown to the user plus the tool-call
// log that produced it.
type Message struct {
	ID             int64
	ConversationID string
	Role           string
	Content        string
	ToolCalls      []model.ToolCallRecord
	CreatedAt      time.Time
}

// ConversationStorage persists investigation threads and their messages.
type ConversationStorage interface {
	// CreateConversation starts a new thread with the default title and
	// returns its id.
	CreateConversation(ctx context.Context) (string, error)

	// ListConversations returns all threads, most recently updated first.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// TitleFromPrompt renames a thread after its first prompt, but only if
	// it still carries the default title.
	TitleFromPrompt(ctx context.Context, conversationID, prompt string) error

	// AppendMessage saves one turn and bumps the thread's updated time.
	AppendMessage(ctx context.Context, conversationID string, msg Message) error

	// LoadMessages returns a thread's messages in insertion order.
	// Returns an empty slice, not nil, for an unknown thread.
	LoadMessages(ctx context.Context, conversationID string) ([]Message, error)

	// DeleteConversation removes a thread and its messages.
	DeleteConversation(ctx context.Context, conversationID string) error

	// Exists checks whether a thread exists.
	Exists(ctx context.Context, conversationID string) (bool, error)
}
