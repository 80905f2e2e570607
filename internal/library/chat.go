package library

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/novatone/internal/db"
)

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// DefaultSessionTitle names sessions created without a title.
const DefaultSessionTitle = "New chat"

// ErrInvalidRole is returned for a message role other than user or model.
var ErrInvalidRole = errors.New("invalid chat role")

// Message is one chat turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatSession is a conversation with the assistant.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSession starts an empty chat session.
func (s *Store) CreateSession(ctx context.Context, title string) (ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}
	cs := ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: s.now().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, created_at) VALUES (?, ?, ?)
	`, cs.ID, cs.Title, cs.CreatedAt.UnixMilli())
	if err != nil {
		return ChatSession{}, err
	}
	return cs, nil
}

// AppendMessage adds msg to the end of the session.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg Message) error {
	if msg.Role != RoleUser && msg.Role != RoleModel {
		return ErrInvalidRole
	}
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions WHERE id = ?`, sessionID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)
		`, sessionID, msg.Role, msg.Text, s.now().UnixMilli())
		return err
	})
}

// Session returns one session with its messages in order.
func (s *Store) Session(ctx context.Context, id string) (ChatSession, error) {
	var cs ChatSession
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at FROM chat_sessions WHERE id = ?
	`, id).Scan(&cs.ID, &cs.Title, &created)
	if db.IsNoRows(err) {
		return ChatSession{}, ErrNotFound
	}
	if err != nil {
		return ChatSession{}, err
	}
	cs.CreatedAt = time.UnixMilli(created)

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, text FROM chat_messages WHERE session_id = ? ORDER BY id
	`, id)
	if err != nil {
		return ChatSession{}, err
	}
	defer rows.Close()

	cs.Messages = []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Text); err != nil {
			return ChatSession{}, err
		}
		cs.Messages = append(cs.Messages, m)
	}
	return cs, rows.Err()
}

// Sessions lists sessions without their messages, newest first.
func (s *Store) Sessions(ctx context.Context) ([]ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at FROM chat_sessions ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []ChatSession{}
	for rows.Next() {
		var cs ChatSession
		var created int64
		if err := rows.Scan(&cs.ID, &cs.Title, &created); err != nil {
			return nil, err
		}
		cs.CreatedAt = time.UnixMilli(created)
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and its messages.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrNotFound)
}
