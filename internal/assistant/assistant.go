// Package assistant is the AI collaborator: chat, mood classification,
// lyrics and genre recommendations. Every call degrades to a fixed
// fallback when the model is unavailable.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/library"
)

// Fallbacks returned when the model cannot answer.
const (
	FallbackChat   = "The assistant is offline right now. Try again later."
	FallbackMood   = "Neutral"
	FallbackLyrics = "Lyrics not found for this track."

	// UnknownMood is used when the model answers with nothing usable.
	UnknownMood = "Unknown"
)

// FallbackRecommendations is returned when recommendations cannot be produced.
var FallbackRecommendations = []string{"Lo-Fi", "Synthwave", "Jazz"}

// statsContextSize is how many top tracks are shared with the model.
const statsContextSize = 5

const chatSystemPrompt = `You are NovaTone, a music assistant inside a terminal music player.
Be concise and friendly, and give personal suggestions based on what the listener plays.
%s`

// Assistant answers music questions. A nil completer makes every call return its fallback.
type Assistant struct {
	completer Completer
	logger    *zap.Logger
}

// New creates an assistant over completer, which may be nil.
func New(completer Completer, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{completer: completer, logger: logger}
}

// Enabled reports whether a model is configured.
func (a *Assistant) Enabled() bool {
	return a.completer != nil
}

func (a *Assistant) complete(ctx context.Context, op string, messages []ChatMessage) (string, bool) {
	if a.completer == nil {
		return "", false
	}
	out, err := a.completer.Complete(ctx, messages)
	if err != nil {
		a.logger.Warn("assistant call failed", zap.String("op", op), zap.Error(err))
		return "", false
	}
	return strings.TrimSpace(out), true
}

// Chat answers message given the prior conversation and the listener's stats.
func (a *Assistant) Chat(ctx context.Context, message string, history []library.Message, stats []library.TrackStat) string {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(chatSystemPrompt, StatsContext(stats)),
	})
	for _, m := range history {
		messages = append(messages, ChatMessage{Role: apiRole(m.Role), Content: m.Text})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	out, ok := a.complete(ctx, "chat", messages)
	if !ok || out == "" {
		return FallbackChat
	}
	return out
}

// Mood classifies a track's mood as a single word.
func (a *Assistant) Mood(ctx context.Context, title, artist string) string {
	prompt := fmt.Sprintf(
		"Classify the musical mood of the track %q by %q. "+
			"Return only one word like: Energetic, Calm, Sad, Melancholic, Happy, Epic, Romantic, Dark.",
		title, artist)

	out, ok := a.complete(ctx, "mood", []ChatMessage{{Role: "user", Content: prompt}})
	if !ok {
		return FallbackMood
	}
	word := firstWord(out)
	if word == "" {
		return UnknownMood
	}
	return word
}

// Lyrics returns the lyrics of a track, or a description of an instrumental.
func (a *Assistant) Lyrics(ctx context.Context, title, artist string) string {
	prompt := fmt.Sprintf(
		"Find the lyrics for the song %q by %q. If it is an instrumental, describe the vibe. "+
			"Return only the text of the lyrics.",
		title, artist)

	out, ok := a.complete(ctx, "lyrics", []ChatMessage{{Role: "user", Content: prompt}})
	if !ok || out == "" {
		return FallbackLyrics
	}
	return out
}

// Recommendations suggests genres or keywords from recently played titles.
func (a *Assistant) Recommendations(ctx context.Context, history []string) []string {
	prompt := fmt.Sprintf(
		"Based on this listening history: %s. Suggest 5 musical genres or keywords the listener would enjoy now. "+
			"Answer with a JSON array of strings only.",
		strings.Join(history, ", "))

	out, ok := a.complete(ctx, "recommendations", []ChatMessage{{Role: "user", Content: prompt}})
	if !ok {
		return fallbackRecommendations()
	}
	recs := parseStringArray(out)
	if len(recs) == 0 {
		a.logger.Debug("unusable recommendations", zap.String("answer", out))
		return fallbackRecommendations()
	}
	return recs
}

// StatsContext summarizes the top played tracks for the system prompt.
func StatsContext(stats []library.TrackStat) string {
	if len(stats) == 0 {
		return "The listener has not played anything yet."
	}
	top := stats[:min(len(stats), statsContextSize)]
	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = fmt.Sprintf("%s (%d plays)", s.Title, s.Count)
	}
	return "Listener stats: " + strings.Join(parts, ", ") + "."
}

func apiRole(role string) string {
	if role == library.RoleModel {
		return "assistant"
	}
	return "user"
}

func firstWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseStringArray reads a JSON array of strings, tolerating a fenced code block around it.
func parseStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "["); i >= 0 {
		if j := strings.LastIndex(s, "]"); j > i {
			s = s[i : j+1]
		}
	}
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func fallbackRecommendations() []string {
	return append([]string(nil), FallbackRecommendations...)
}
