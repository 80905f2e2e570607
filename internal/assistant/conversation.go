package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/library"
)

// ErrEmptyMessage is returned for blank chat input.
var ErrEmptyMessage = errors.New("empty message")

// sessionTitleRunes caps titles derived from the first message.
const sessionTitleRunes = 40

// ChatStore persists chat sessions and supplies listening stats.
type ChatStore interface {
	CreateSession(ctx context.Context, title string) (library.ChatSession, error)
	Session(ctx context.Context, id string) (library.ChatSession, error)
	AppendMessage(ctx context.Context, sessionID string, msg library.Message) error
	TopStats(ctx context.Context, n int) ([]library.TrackStat, error)
}

// Converse sends message within a stored session and records both sides.
// An empty sessionID starts a new session titled after the message.
func (a *Assistant) Converse(ctx context.Context, store ChatStore, sessionID, message string) (reply, id string, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", ErrEmptyMessage
	}

	var session library.ChatSession
	if sessionID == "" {
		session, err = store.CreateSession(ctx, titleFrom(message))
	} else {
		session, err = store.Session(ctx, sessionID)
	}
	if err != nil {
		return "", "", fmt.Errorf("chat session: %w", err)
	}

	stats, err := store.TopStats(ctx, statsContextSize)
	if err != nil {
		a.logger.Warn("load stats for chat context failed", zap.Error(err))
		stats = nil
	}

	reply = a.Chat(ctx, message, session.Messages, stats)

	if err := store.AppendMessage(ctx, session.ID, library.Message{Role: library.RoleUser, Text: message}); err != nil {
		return reply, session.ID, fmt.Errorf("save message: %w", err)
	}
	if err := store.AppendMessage(ctx, session.ID, library.Message{Role: library.RoleModel, Text: reply}); err != nil {
		return reply, session.ID, fmt.Errorf("save reply: %w", err)
	}
	return reply, session.ID, nil
}

func titleFrom(message string) string {
	r := []rune(message)
	if len(r) <= sessionTitleRunes {
		return message
	}
	return strings.TrimSpace(string(r[:sessionTitleRunes])) + "..."
}
