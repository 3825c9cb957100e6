// Package persistence provides SQLite-backed storage for conversation
// sessions: the message history and the serialized business context the
// caller persists between turns.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
)

// ErrSessionNotFound is returned when a session id has no stored state.
var ErrSessionNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	chatbot_id       TEXT NOT NULL,
	business_context TEXT NOT NULL DEFAULT '{}',
	started_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	visible    INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
`

// Store is the session database handle. One store serves all sessions;
// SQLite's single-writer model is enforced through the connection pool.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the session store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_foreign_keys=ON&_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping session store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger := logx.NewLogger("persistence")
	logger.Info("session store initialized: %s", path)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession upserts the session row together with its serialized
// business context. Called once per turn, after the state machine has
// produced the new snapshot.
func (s *Store) SaveSession(ctx context.Context, session chat.Session, business intent.SessionBusinessContext) error {
	payload, err := json.Marshal(business)
	if err != nil {
		return fmt.Errorf("failed to serialize business context: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, chatbot_id, business_context, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET business_context = excluded.business_context, updated_at = excluded.updated_at
	`, session.ID, session.ChatbotID, string(payload), session.StartedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// LoadBusinessContext reads the business context snapshot for a session.
func (s *Store) LoadBusinessContext(ctx context.Context, sessionID string) (intent.SessionBusinessContext, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT business_context FROM sessions WHERE id = ?`, sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return intent.SessionBusinessContext{}, ErrSessionNotFound
	}
	if err != nil {
		return intent.SessionBusinessContext{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var business intent.SessionBusinessContext
	if err := json.Unmarshal([]byte(payload), &business); err != nil {
		return intent.SessionBusinessContext{}, fmt.Errorf("failed to parse business context for %s: %w", sessionID, err)
	}
	return business, nil
}

// AppendMessage stores one message for a session.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg chat.Message) error {
	visible := 0
	if msg.Visible {
		visible = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, visible, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, sessionID, string(msg.Role), msg.Content, visible, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append message %s: %w", msg.ID, err)
	}
	return nil
}

// Messages loads a session's messages in chronological order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, visible, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for %s: %w", sessionID, err)
	}
	defer rows.Close() //nolint:errcheck // Close in defer is safe

	var messages []chat.Message
	for rows.Next() {
		var msg chat.Message
		var role string
		var visible int
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &visible, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = chat.SenderRole(role)
		msg.Visible = visible != 0
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message row iteration error: %w", err)
	}
	return messages, nil
}
