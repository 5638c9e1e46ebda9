// SQLite-backed conversation storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/inquest/model"
)

// SqliteStorage implements ConversationStorage using SQLite.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS conversation_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_calls_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON conversation_messages(conversation_id, id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateConversation starts a new thread with the default title.
func (s *SqliteStorage) CreateConversation(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, title) VALUES (?, ?)",
		id, DefaultTitle)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// ListConversations returns all threads, most recently updated first.
func (s *SqliteStorage) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var conv Conversation
		var created, updated string
		if err := rows.Scan(&conv.ID, &conv.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt = parseTimestamp(created)
		conv.UpdatedAt = parseTimestamp(updated)
		conversations = append(conversations, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}

// TitleFromPrompt renames a thread after its first prompt, but only while
// it still carries the default title.
func (s *SqliteStorage) TitleFromPrompt(ctx context.Context, conversationID, prompt string) error {
	title := strings.TrimSpace(strings.ReplaceAll(prompt, "\n", " "))
	if title == "" {
		return nil
	}
	if len(title) > MaxTitleLen {
		title = title[:MaxTitleLen]
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations
		SET title = ?, updated_at = datetime('now')
		WHERE id = ? AND title = ?`,
		title, conversationID, DefaultTitle)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	return nil
}

// AppendMessage saves one turn and bumps the thread's updated time.
func (s *SqliteStorage) AppendMessage(ctx context.Context, conversationID string, msg Message) error {
	toolCalls := msg.ToolCalls
	if toolCalls == nil {
		toolCalls = []model.ToolCallRecord{}
	}
	toolCallsJSON, err := json.Marshal(toolCalls)
	if err != nil {
		return fmt.Errorf("failed to encode tool calls: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_messages (conversation_id, role, content, tool_calls_json)
		VALUES (?, ?, ?, ?)`,
		conversationID, msg.Role, msg.Content, string(toolCallsJSON))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = datetime('now') WHERE id = ?",
		conversationID)
	if err != nil {
		return fmt.Errorf("failed to update conversation timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadMessages returns a thread's messages in insertion order.
// Returns empty slice if the conversation doesn't exist.
func (s *SqliteStorage) LoadMessages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, tool_calls_json, created_at
		FROM conversation_messages
		WHERE conversation_id = ?
		ORDER BY id ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{} // Start with empty slice, not nil
	for rows.Next() {
		var msg Message
		var toolCallsJSON, created string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &toolCallsJSON, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.ConversationID = conversationID
		msg.CreatedAt = parseTimestamp(created)
		// Unreadable tool-call JSON degrades to an empty log rather than
		// failing the whole load.
		var toolCalls []model.ToolCallRecord
		if err := json.Unmarshal([]byte(toolCallsJSON), &toolCalls); err == nil {
			msg.ToolCalls = toolCalls
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// DeleteConversation removes a thread and its messages.
func (s *SqliteStorage) DeleteConversation(ctx context.Context, conversationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM conversation_messages WHERE conversation_id = ?",
		conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM conversations WHERE id = ?",
		conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exists checks whether a conversation exists.
func (s *SqliteStorage) Exists(ctx context.Context, conversationID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE id = ?",
		conversationID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	return count > 0, nil
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Verify SqliteStorage implements the interface
var _ ConversationStorage = (*SqliteStorage)(nil)
